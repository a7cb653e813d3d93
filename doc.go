// Package core provides a hybrid memory/recall engine for
// agent-style applications: a dense vector index, an SQLite FTS5
// keyword index, and an entity/relationship graph, fused behind a
// single Remember/Recall/Correct/Forget/Stats/Export/Import API.
//
// # Key Features
//
//   - Hybrid Recall — vector similarity and BM25 keyword ranking fused
//     with configurable weights, not a fixed rank-fusion formula.
//   - Entity Graph — lightweight, lazily-accurate entity/relationship
//     extraction powers graph-expanded recall without an external NLP
//     service.
//   - Temporal Awareness — absolute and relative date expressions in
//     both stored content and queries narrow recall to a time window.
//   - Deduplication — nearest-neighbor plus trigram overlap rejects or
//     flags near-duplicate memories before they're persisted.
//   - Portable Bundles — export/import a store as a self-describing
//     JSON bundle, with configurable re-embedding and conflict
//     resolution across embedding-model boundaries.
//   - 100% Pure Go — SQLite via modernc.org/sqlite, no CGO required.
//
// # Quick Start
//
//	import (
//	    "context"
//	    core "github.com/agentmemory/core"
//	)
//
//	func main() {
//	    cfg := core.DefaultConfig("memories.db")
//	    svc, err := core.Open(context.Background(), cfg)
//	    if err != nil {
//	        panic(err)
//	    }
//	    defer svc.Close()
//
//	    ctx := context.Background()
//	    result, _ := svc.Remember(ctx, core.RememberInput{
//	        Content: "Joe likes Python programming",
//	    })
//
//	    hits, _ := svc.Recall(ctx, "What does Joe like?", core.RecallOptions{Limit: 5})
//	    _ = result
//	    _ = hits
//	}
//
// # Configuration
//
// Open accepts a Config built with DefaultConfig or loaded from YAML
// via LoadConfig; see config.go for every recognized field.
package core
