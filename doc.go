// Package clicksign is a client for the Lleida.net Click&Sign electronic signature
// service.
//
// Every payload exchanged with the service is checked against a declarative schema
// (see package schema) before it is used: signature requests before they are sent,
// responses before they are returned, and callback notifications as they arrive. Valid
// payloads are exposed both as typed records and as read-only views (see package view).
//
//	client, err := clicksign.New(clicksign.Config{User: user, Password: password})
//	if err != nil {
//		return err
//	}
//	started, err := client.Signature.Start(ctx, request)
//	var invalid *clicksign.ValidationError
//	if errors.As(err, &invalid) {
//		for _, field := range invalid.Fields() {
//			log.Printf("%s: %v", field, invalid.Errors.Get(field))
//		}
//	}
//
// Credentials are always passed explicitly; reading them from the environment is left to
// the caller, as the bundled command does.
package clicksign
