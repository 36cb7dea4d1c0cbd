// Package shared keeps slices of state whose source of truth lives outside any
// single store: process memory, a key-value store or a file.
//
// A Backend owns one reference cell per key name. Every Shared handle created from
// the same Key on the same Backend reads and writes that cell, so a write through
// one handle is visible to the next Load of every other handle. Persistent storages
// are written before WithLock returns.
//
//	backend := shared.NewInMemory(ctx, logger, cfg.NotifyScope())
//	defer backend.Close()
//
//	stats := shared.New(shared.NewKey[Stats](backend, "stats"), Stats{})
//	err := stats.WithLock(ctx, func(s *Stats) { s.Increment() })
package shared
