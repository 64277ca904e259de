package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/youtube/v3"

	"pinpoint/internal/publish"
)

const authTimeout = 5 * time.Minute

func newAuthCommand(ctx *commandContext) *cobra.Command {
	authCmd := &cobra.Command{
		Use:   "auth",
		Short: "Credential helpers",
	}
	authCmd.AddCommand(newAuthYouTubeCommand(ctx))
	return authCmd
}

func newAuthYouTubeCommand(ctx *commandContext) *cobra.Command {
	var secretsPath string
	var clientID string
	var clientSecret string
	var port int

	cmd := &cobra.Command{
		Use:   "youtube",
		Short: "Run the OAuth consent flow and print a YouTube refresh token",
		Long: "Opens a loopback listener, prints the Google consent URL and exchanges the returned\n" +
			"code for a refresh token. Store the token as YOUTUBE_REFRESH_TOKEN.",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
			if err != nil {
				return fmt.Errorf("listen for oauth callback: %w", err)
			}
			redirect := "http://" + listener.Addr().String() + "/"

			conf, err := oauthConfig(ctx, secretsPath, clientID, clientSecret, redirect)
			if err != nil {
				_ = listener.Close()
				return err
			}

			waitCtx, cancel := context.WithTimeout(cmd.Context(), authTimeout)
			defer cancel()

			state := uuid.NewString()
			codes := make(chan callbackResult, 1)
			server := &http.Server{Handler: callbackHandler(state, codes), ReadHeaderTimeout: 10 * time.Second}
			go func() { _ = server.Serve(listener) }()
			defer func() {
				shutdownCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
				defer done()
				_ = server.Shutdown(shutdownCtx)
			}()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Open this URL in a browser and grant access:")
			fmt.Fprintln(out, conf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce))

			var result callbackResult
			select {
			case result = <-codes:
			case <-waitCtx.Done():
				return fmt.Errorf("waiting for oauth callback: %w", waitCtx.Err())
			}
			if result.err != nil {
				return result.err
			}

			token, err := conf.Exchange(waitCtx, result.code)
			if err != nil {
				return fmt.Errorf("exchange authorization code: %w", err)
			}
			if token.RefreshToken == "" {
				return errors.New("google did not return a refresh token; revoke the app's access and retry")
			}
			fmt.Fprintln(out)
			fmt.Fprintf(out, "YOUTUBE_REFRESH_TOKEN=%s\n", token.RefreshToken)
			return nil
		},
	}
	cmd.Flags().StringVar(&secretsPath, "client-secrets", "", "Path to the client_secrets.json downloaded from Google Cloud")
	cmd.Flags().StringVar(&clientID, "client-id", "", "OAuth client ID (defaults to config/YOUTUBE_CLIENT_ID)")
	cmd.Flags().StringVar(&clientSecret, "client-secret", "", "OAuth client secret (defaults to config/YOUTUBE_CLIENT_SECRET)")
	cmd.Flags().IntVar(&port, "port", 0, "Loopback port for the callback (0 picks a free port)")
	return cmd
}

// oauthConfig prefers a client secrets file, then flags, then configuration.
func oauthConfig(ctx *commandContext, secretsPath, clientID, clientSecret, redirect string) (*oauth2.Config, error) {
	if path := strings.TrimSpace(secretsPath); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read client secrets: %w", err)
		}
		conf, err := google.ConfigFromJSON(data, youtube.YoutubeUploadScope)
		if err != nil {
			return nil, fmt.Errorf("parse client secrets: %w", err)
		}
		conf.RedirectURL = redirect
		return conf, nil
	}

	if strings.TrimSpace(clientID) == "" || strings.TrimSpace(clientSecret) == "" {
		if cfg, err := ctx.ensureConfig(); err == nil {
			if strings.TrimSpace(clientID) == "" {
				clientID = cfg.YouTube.ClientID
			}
			if strings.TrimSpace(clientSecret) == "" {
				clientSecret = cfg.YouTube.ClientSecret
			}
		}
	}
	if strings.TrimSpace(clientID) == "" || strings.TrimSpace(clientSecret) == "" {
		return nil, errors.New("client id and secret required: pass --client-secrets or --client-id/--client-secret")
	}
	return publish.OAuthConfig(clientID, clientSecret, redirect), nil
}

type callbackResult struct {
	code string
	err  error
}

// callbackHandler receives the consent redirect. Only the first result is
// delivered; later requests are answered but dropped.
func callbackHandler(state string, results chan<- callbackResult) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		var result callbackResult
		switch {
		case query.Get("error") != "":
			result.err = fmt.Errorf("authorization denied: %s", query.Get("error"))
		case query.Get("state") != state:
			result.err = errors.New("oauth state mismatch")
		case query.Get("code") == "":
			result.err = errors.New("oauth callback missing code")
		default:
			result.code = query.Get("code")
		}

		if result.err != nil {
			http.Error(w, result.err.Error(), http.StatusBadRequest)
		} else {
			fmt.Fprintln(w, "Authorization complete. You can close this window.")
		}
		select {
		case results <- result:
		default:
		}
	})
}
