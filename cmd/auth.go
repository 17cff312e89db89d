package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"

	"cratedig/internal/server"
	"cratedig/internal/services"
	"cratedig/internal/shared"
)

// AuthLogin performs the OAuth2 authentication flow for Spotify.
//
// Starts a local HTTP server, opens the browser for user authorization, and
// exchanges the auth code for tokens which are saved back to the config file.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	config := r.config
	if _, err := os.Stat(configPath); err == nil {
		if loaded, err := shared.LoadConfig(configPath); err == nil {
			config = loaded
			r.config = loaded
		} else {
			r.logger.Warnf("failed to load config, using current settings %v", err)
		}
	}

	if config.Credentials.Spotify.ClientID == "" || config.Credentials.Spotify.ClientSecret == "" {
		return fmt.Errorf("%w: Spotify client_id and client_secret must be set in %s", shared.ErrMissingCredentials, configPath)
	}

	spotifyService, err := services.NewSpotifyService(config.Credentials.Spotify.Map())
	if err != nil {
		return fmt.Errorf("failed to create Spotify service: %w", err)
	}

	token, err := r.doOAuth(config, spotifyService, "authorization")
	if err != nil {
		return err
	}

	if err := config.Credentials.Spotify.Update(token); err != nil {
		return fmt.Errorf("failed to update spotify configuration: %w", err)
	}

	if err := shared.SaveConfig(configPath, config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	r.spotify = spotifyService

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Tokens saved to %s\n\n", configPath)
	r.writePlain("You can now use: cratedig sync\n")

	return nil
}

// AuthStatus reports which services have credentials configured.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	spotify := r.config.Credentials.Spotify

	if spotify.ClientID != "" && spotify.ClientSecret != "" {
		r.writePlain("Spotify app: ✓ configured\n")
	} else {
		r.writePlain("Spotify app: ✗ missing client_id or client_secret\n")
	}

	if spotify.AccessToken != "" {
		r.writePlain("Spotify token: ✓ present\n")
	} else {
		r.writePlain("Spotify token: ✗ not authorized, run 'cratedig auth login'\n")
	}

	if r.config.Credentials.Discogs.Token != "" {
		r.writePlain("Discogs token: ✓ present\n")
	} else {
		r.writePlain("Discogs token: ✗ missing, ratings will be skipped\n")
	}

	return nil
}

// doOAuth executes the OAuth2 authorization flow with a local HTTP server
func (r *Runner) doOAuth(config *shared.Config, oauthSrv services.OAuthService, prefix string) (*oauth2.Token, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state token: %w", err)
	}

	authURL := oauthSrv.GetAuthURL(state)
	oauthHandler := server.NewOAuthHandler(oauthSrv.GetOAuthConfig(), state)
	router := server.NewBasicRouter()
	router.Use(server.Logging(r.logger))
	router.Handler(oauthHandler)

	serverAddr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting OAuth server for %s at %v", prefix, serverAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)

	r.writePlain("→ Opening browser for Spotify %s...\n", prefix)
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	timeout := time.NewTimer(2 * time.Minute)
	defer timeout.Stop()

	var result server.OAuthResult

	select {
	case result = <-oauthHandler.Result():
	case err := <-serverErrors:
		return nil, fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return nil, fmt.Errorf("%w: authorization timed out after 2 minutes", shared.ErrTimeout)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Warn("error shutting down server", "error", err)
	}

	if result.Error() != nil {
		return nil, fmt.Errorf("authorization failed: %w", result.Error())
	}

	if result.Token == nil {
		return nil, fmt.Errorf("no token received")
	}

	return result.Token, nil
}

// ensureAuthenticated authenticates the Spotify service with stored tokens
// before library operations.
func (r *Runner) ensureAuthenticated(ctx context.Context) error {
	if r.spotify == nil {
		return fmt.Errorf("%w: Spotify service not initialized", shared.ErrServiceUnavailable)
	}

	creds := r.config.Credentials.Spotify
	if creds.AccessToken == "" {
		return fmt.Errorf("%w: run 'cratedig auth login' first", shared.ErrNotAuthenticated)
	}

	return r.spotify.Authenticate(ctx, creds.Map())
}

// handleAuthError checks whether an error is a token expiration and triggers
// reauthorization when it is. The first return value reports whether a reauth
// was attempted.
func (r *Runner) handleAuthError(ctx context.Context, err error, cmd *cli.Command) (bool, error) {
	if err == nil || !errors.Is(err, shared.ErrTokenExpired) {
		return false, err
	}

	r.logger.Info("access token expired, reauthorizing")

	oauthSrv, ok := r.spotify.(services.OAuthService)
	if !ok {
		return false, err
	}

	configPath := cmd.String("config")
	token, oauthErr := r.doOAuth(r.config, oauthSrv, "reauthorization")
	if oauthErr != nil {
		return true, oauthErr
	}

	if updateErr := r.config.Credentials.Spotify.Update(token); updateErr != nil {
		return true, fmt.Errorf("failed to update spotify configuration: %w", updateErr)
	}

	if saveErr := shared.SaveConfig(configPath, r.config); saveErr != nil {
		return true, fmt.Errorf("failed to save config: %w", saveErr)
	}

	if authErr := r.spotify.Authenticate(ctx, r.config.Credentials.Spotify.Map()); authErr != nil {
		return true, authErr
	}

	r.writePlainln("✓ Reauthorization successful")
	return true, nil
}
