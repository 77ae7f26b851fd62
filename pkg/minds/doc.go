// Package minds is a Go client for the Minds REST API. A Client exposes two services:
// Datasources manages named connections to external data stores and Minds manages named
// model configurations bound to one or more of those data sources.
//
//	client, err := minds.NewClient(os.Getenv("MINDS_API_KEY"))
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	mind, err := client.Minds.Create(ctx, minds.CreateMindRequest{
//		Name:        "sales",
//		Datasources: []string{"sales_db"},
//	})
//
// Every call validates its arguments before touching the network. Errors match the
// sentinel kinds in pkg/apperrors with errors.Is.
package minds
