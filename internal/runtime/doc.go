// Package runtime wires config, logging, and the stream registry into a
// single-node memstream instance. It exposes Open/Close, basic health
// checks, and the stream lifecycle: lookup, auto-creation, explicit
// create, and delete.
//
// Example:
//
//	cfg := config.Default()
//	rt, _ := runtime.Open(runtime.Options{Config: cfg})
//	defer rt.Close()
//	// Health
//	_ = rt.CheckHealth(context.Background())
//	// Resolve a stream and append
//	s, _ := rt.EnsureStream("orders")
//	_, _, _ = s.Add([][]byte{[]byte("k"), []byte("v")}, "*")
package runtime
