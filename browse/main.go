package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"path"
	"strings"
	"syscall"
	"time"

	"github.com/gdamore/tcell"
	"github.com/pkg/browser"
	"github.com/thistlecode/gemini"
	"github.com/thistlecode/gemini/cert"
)

func main() {
	// Configure the context to handle SIGINT.
	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	defer func() {
		signal.Stop(c)
		cancel()
	}()
	go func() {
		select {
		case <-c:
			cancel()
		case <-ctx.Done():
		}
		os.Exit(2)
	}()

	// Setup config.
	conf, err := NewConfig()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	// Create the history file.
	h, closer, err := NewHistory(conf.MaximumHistory, path.Join(configPath, "history.tsv"))
	if err != nil {
		fmt.Println("Error loading history:", err)
		os.Exit(1)
	}
	defer closer()

	// State.
	state := &State{
		URL:     strings.Join(os.Args[1:], ""),
		History: h,
		Conf:    conf,
	}

	// Use a URL passed via the command-line URL, if provided.
	state.URL = strings.Join(os.Args[1:], "")
	if state.URL == "" {
		state.URL = conf.Home
	}

	// Create client.
	state.Client = gemini.NewDialer()
	for host, certHash := range conf.HostCertificates {
		state.Client.TrustServerCertificate(host, certHash)
	}
	for prefix := range conf.ClientCertPrefixes {
		cert, err := prefix.Load()
		if err != nil {
			NewOptions(state.Screen, fmt.Sprintf("Error loading client certificate\n\nURL: %v\nMessage: %v", prefix, err), "Continue").Focus()
			continue
		}
		state.Client.AddClientCertificate(string(prefix), cert)
	}

	// Create a screen.
	tcell.SetEncodingFallback(tcell.EncodingFallbackASCII)
	s, err := tcell.NewScreen()
	if err != nil {
		fmt.Println("Error creating screen:", err)
		os.Exit(1)
	}
	if err = s.Init(); err != nil {
		fmt.Println("Error initializing screen:", err)
		os.Exit(1)
	}
	defer s.Fini()

	// Set default colours.
	s.SetStyle(tcell.StyleDefault.
		Foreground(tcell.ColorWhite).
		Background(tcell.ColorBlack))
	state.Screen = s
	Run(ctx, state)
}

// State is the browser's current navigation state: the URL bar
// contents, the session's history stack, the screen to draw to, the
// dialer used to fetch pages and the persisted configuration.
type State struct {
	URL     string
	History *History
	Screen  tcell.Screen
	Client  *gemini.Dialer
	Conf    *Config
}

type Action string

const (
	ActionHome      Action = ""
	ActionAskForURL Action = "AskForURL"
	ActionNavigate  Action = "Navigate"
	ActionDisplay   Action = "Display"
)

// Run drives the browser's state machine: Home -> AskForURL ->
// Navigate -> Display, looping until the user exits.
func Run(ctx context.Context, state *State) {
	var action Action
	var redirectCount int
	var ok bool
	var err error
	var u *url.URL
	for {
		if action == ActionHome {
			switch NewOptions(state.Screen, "Welcome to the min browser", "Enter URL", "View History", "Exit").Focus() {
			case "Enter URL":
				action = ActionAskForURL
				continue
			case "View History":
				hu, hr := state.History.All()
				b, err := NewBrowser(state.Screen, state.Conf.Width, hu, hr)
				if err != nil {
					NewOptions(state.Screen, fmt.Sprintf("Error viewing history: %v", err), "Continue").Focus()
					continue
				}
				if err = state.History.Add(b); err != nil {
					NewOptions(state.Screen, fmt.Sprintf("Unable to persist history to disk: %v", err), "OK").Focus()
				}
				action = ActionDisplay
				continue
			case "Exit":
				return
			}
		}
		if action == ActionAskForURL {
			state.URL, ok = NewInput(state.Screen, "Enter URL:", state.URL).Focus()
			if !ok {
				action = ActionHome
				continue
			}
			// Check the URL.
			u, err = url.Parse(state.URL)
			if err != nil {
				NewOptions(state.Screen, fmt.Sprintf("Error parsing URL\n\nURL: %v\nMessage: %v", state.URL, err), "Continue").Focus()
				action = ActionAskForURL
				continue
			}
			action = ActionNavigate
			continue
		}
		if action == ActionNavigate {
			// Connect.
			var resp *gemini.DialResponse
			var certificates []string
			var trusted bool
		out:
			for {
				resp, certificates, trusted, err = state.Client.RequestURL(ctx, u)
				if err != nil {
					switch NewOptions(state.Screen, fmt.Sprintf("Error making request\n\nURL: %v\nMessage: %v", u, err), "Retry", "Cancel").Focus() {
					case "Retry":
						action = ActionNavigate
						continue
					case "Cancel":
						break out
					}
				}
				if !trusted {
					// TOFU check required.
					switch NewOptions(state.Screen, fmt.Sprintf("Accept server certificate?\n  %v", certificates[0]), "Accept (Permanent)", "Accept (Temporary)", "Reject").Focus() {
					case "Accept (Permanent)":
						state.Conf.HostCertificates[u.Host] = certificates[0]
						state.Conf.Save()
						state.Client.TrustServerCertificate(u.Host, certificates[0])
						action = ActionNavigate
						continue
					case "Accept (Temporary)":
						state.Client.TrustServerCertificate(u.Host, certificates[0])
						action = ActionNavigate
						continue
					case "Reject":
						break out
					}
				}
				break
			}
			ok = trusted
			if !ok || resp == nil {
				action = ActionAskForURL
				continue
			}
			if resp.Code.IsRedirect() {
				redirectCount++
				if redirectCount >= 5 {
					if keepTrying := NewOptions(state.Screen, fmt.Sprintf("The server issued 5 redirects, keep trying?"), "Keep Trying", "Cancel").Focus(); keepTrying == "Keep Trying" {
						redirectCount = 0
						action = ActionNavigate
						continue
					}
					action = ActionAskForURL
					continue
				}
				redirectTo, err := url.Parse(resp.Meta)
				if err != nil {
					NewOptions(state.Screen, fmt.Sprintf("The server returned an invalid redirect URL\n\nURL: %v\nCode: %v\nMeta: %s", u.String(), resp.Code, resp.Meta), "Cancel").Focus()
					action = ActionNavigate
					continue
				}
				// Check with the user if the redirect is to another protocol or domain.
				redirectTo = u.ResolveReference(redirectTo)
				if redirectTo.Scheme != "gemini" {
					if open := NewOptions(state.Screen, fmt.Sprintf("Follow non-gemini redirect?\n\n %v", redirectTo.String()), "Yes", "No").Focus(); open == "Yes" {
						browser.OpenURL(redirectTo.String())
					}
					action = ActionNavigate
					continue
				}
				if redirectTo.Host != u.Host {
					if open := NewOptions(state.Screen, fmt.Sprintf("Follow cross-domain redirect?\n\n %v", redirectTo.String()), "Yes", "No").Focus(); open == "No" {
						action = ActionAskForURL
						continue
					}
				}
				state.URL = redirectTo.String()
				u = redirectTo
				action = ActionNavigate
				continue
			}
			redirectCount = 0
			if resp.Code.IsCertificateRequired() {
				msg := fmt.Sprintf("The server has requested a certificate\n\nURL: %s\nCode: %v\nMeta: %s", u.String(), resp.Code, resp.Meta)
				certificateOption := NewOptions(state.Screen, msg, "Create (Permanent)", "Create (Temporary)", "Cancel").Focus()
				if certificateOption == "Cancel" {
					action = ActionAskForURL
					continue
				}
				permanent := strings.Contains(certificateOption, "Permanent")
				duration := time.Hour * 24
				if permanent {
					duration *= 365 * 200
				}
				cert, key, _ := cert.Generate("", "", "", duration)
				keyPair, err := tls.X509KeyPair(cert, key)
				if err != nil {
					NewOptions(state.Screen, fmt.Sprintf("Error creating certificate: %v", err), "Continue").Focus()
					action = ActionAskForURL
					continue
				}
				prefix := ClientCertPrefix(u.Scheme + "://" + u.Host + u.Path)
				state.Client.AddClientCertificate(string(prefix), keyPair)
				if permanent {
					if err = prefix.Save(cert, key); err != nil {
						NewOptions(state.Screen, fmt.Sprintf("Error saving certificate: %v", err), "Continue").Focus()
						action = ActionAskForURL
						continue
					}
					state.Conf.ClientCertPrefixes[prefix] = struct{}{}
					if err = state.Conf.Save(); err != nil {
						NewOptions(state.Screen, fmt.Sprintf("Error saving configuration: %v", err), "Continue").Focus()
						action = ActionAskForURL
						continue
					}
				}
				action = ActionNavigate
				continue
			}
			if resp.Code.IsInput() {
				text, ok := NewInput(state.Screen, resp.Meta, "").Focus()
				if !ok {
					continue
				}
				// Post the input back.
				u.RawQuery = url.QueryEscape(text)
				state.URL = u.String()
				action = ActionNavigate
				continue
			}
			if resp.Code.IsSuccess() {
				b, err := NewBrowser(state.Screen, state.Conf.Width, u, resp)
				if err != nil {
					NewOptions(state.Screen, fmt.Sprintf("Error displaying server response: %v", err), "OK").Focus()
					action = ActionAskForURL
					continue
				}
				if err = state.History.Add(b); err != nil {
					NewOptions(state.Screen, fmt.Sprintf("Unable to persist history to disk: %v", err), "OK").Focus()
				}
				action = ActionDisplay
				continue
			}
			NewOptions(state.Screen, fmt.Sprintf("Error returned by server\n\nURL: %v\nCode: %v\nMeta: %s", u.String(), resp.Code, resp.Meta), "OK").Focus()
			action = ActionAskForURL
		}
		if action == ActionDisplay {
			next, back, forward, err := state.History.Current().Focus()
			if err != nil {
				NewOptions(state.Screen, fmt.Sprintf("Error processing link returned by server\n\nLink: %v\nMessage: %v", next, err), "OK").Focus()
				action = ActionAskForURL
				continue
			}
			if back {
				state.History.Back()
				continue
			}
			if forward {
				state.History.Forward()
				continue
			}
			if next != nil {
				if next.Scheme != "gemini" {
					if open := NewOptions(state.Screen, fmt.Sprintf("Open in browser?\n\n %v", next.String()), "Yes", "No").Focus(); open == "Yes" {
						browser.OpenURL(next.String())
					}
					state.History.Back()
					continue
				}
				state.URL = next.String()
				u = next
				action = ActionNavigate
				continue
			}
			action = ActionAskForURL
			continue
		}
	}
}
