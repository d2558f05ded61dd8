// Package babytrack provides a programmatic client for recording baby-care
// events (diapers, formula bottles, nursing sessions) to the Baby Tracker
// service.
//
// Quick start:
//
//	c, err := babytrack.New(
//	    babytrack.WithCredentials("parent@example.com", "secret", "device-uuid"),
//	    babytrack.WithBabies(babytrack.Baby{Name: "Alice", DOB: "2025-03-01"}),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	receipt, _ := c.RecordDiaper(ctx, "Alice", "wet")
//	fmt.Println(receipt.SyncID)
//
// The Client is safe for concurrent use. Each Record call performs its own
// login, reads the account's sync cursor, and posts one transaction.
package babytrack
