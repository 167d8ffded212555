// Package ragserve provides a Go client for the ragserve retrieval-augmented
// question answering service.
//
//	client := ragserve.New("http://localhost:8000",
//	    ragserve.WithAPIKey("secret"),
//	)
//	_, _ = client.CreateDatabase(ctx, "docs", []string{"https://go.dev/doc/effective_go"})
//	answer, _ := client.Ask(ctx, "docs", "How do goroutines work?", nil)
//	fmt.Println(answer.Text)
package ragserve
