// Package ollama is a minimal client for a local Ollama inference server.
//
// Usage:
//
//	client, err := ollama.New(ollama.Config{BaseURL: "http://localhost:11434", Model: "gemma3"})
//	sess := client.Open()
//	defer sess.Close()
//	res := sess.Generate(ctx, "Summarize ...")
//	if res.OK() { fmt.Println(res.Text) } else { fmt.Println(res) } // "Error: Status 404"
//
// Generate never returns a Go error. Transport failures and non-200 statuses
// are carried inside the Result as *TransportFault or *StatusFault so that a
// fan-out of many calls always completes.
package ollama
