package google

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// HTTPClient returns an OAuth2 client for the given scopes. When
// credentialsFile is empty, Application Default Credentials are used.
func HTTPClient(ctx context.Context, credentialsFile string, scopes ...string) (*http.Client, error) {
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}

	if credentialsFile == "" {
		client, err := google.DefaultClient(ctx, scopes...)
		if err != nil {
			return nil, fmt.Errorf("no Google credentials configured and application default credentials unavailable: %w", err)
		}
		return client, nil
	}

	creds, err := CredentialsFromFile(ctx, credentialsFile, scopes...)
	if err != nil {
		return nil, err
	}
	return oauth2.NewClient(ctx, creds.TokenSource), nil
}

// CredentialsFromFile loads service account or authorized-user credentials
func CredentialsFromFile(ctx context.Context, path string, scopes ...string) (*google.Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read Google credentials file: %w", err)
	}
	creds, err := google.CredentialsFromJSON(ctx, data, scopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Google credentials file: %w", err)
	}
	return creds, nil
}
