// Package app bootstraps coa: it initializes logging, loads the
// configuration once and wires the components on a shared storage backend.
//
// # Components
//
//   - Config (config.go): how the process was invoked (config directory, log
//     level, log output).
//   - Application (bootstrap.go): logging setup, configuration loading and
//     an oauth2-authorized HTTP client for calling the provider's APIs.
//   - Services (services.go): the storage backend selected by
//     storage.driver, the client registry, the token exchange client, the
//     token store with its refresher and the authorization flow coordinator.
//
// The token store and the refresher depend on each other; the refresher is
// attached to the store after both are built.
//
// # Usage
//
//	application, err := app.NewApplication(app.NewConfig(configPath, "info", os.Stderr))
//	if err != nil {
//	    return err
//	}
//	defer application.Close()
//
//	token, err := application.Services().Tokens.GetAccessToken(ctx, "demo")
package app
