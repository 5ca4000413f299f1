package server

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/chainydev/chainyctl/internal/auth"
)

// CallbackHandler receives the provider redirect on the loopback server.
// Implements the Handler interface for registration with a Router.
//
// A callback is processed at most once per handler; the browser lands on
// a page that immediately strips the code and state from its URL so the
// parameters cannot be replayed from history.
type CallbackHandler struct {
	resolver    *auth.Resolver
	logger      *log.Logger
	resultChan  chan auth.Outcome
	once        sync.Once
	callbackHit bool
	mu          sync.Mutex
}

// NewCallbackHandler creates a handler that feeds callbacks into the resolver.
func NewCallbackHandler(resolver *auth.Resolver, logger *log.Logger) *CallbackHandler {
	return &CallbackHandler{
		resolver:   resolver,
		logger:     logger,
		resultChan: make(chan auth.Outcome, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *CallbackHandler) Routes() []string {
	return []string{"/callback"}
}

// ServeHTTP handles one provider redirect.
//
// Requests without callback parameters are answered with a waiting page
// and do not consume the handler.
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if query.Get("code") == "" && query.Get("error") == "" {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, waitingPage)
		return
	}

	h.mu.Lock()
	if h.callbackHit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.callbackHit = true
	h.mu.Unlock()

	outcome := h.resolver.Resolve(r.Context(), query)
	h.Send(outcome)

	w.Header().Set("Content-Type", "text/html")
	if outcome.Status == auth.StatusExchanged {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, successPage)
		return
	}

	h.logger.Warn("callback resolution failed", "status", outcome.Status, "error", outcome.Err)
	w.WriteHeader(http.StatusBadRequest)
	fmt.Fprintf(w, failurePage, outcome.Status)
}

// Send sends the outcome through the channel (only once).
func (h *CallbackHandler) Send(outcome auth.Outcome) {
	h.once.Do(func() {
		h.resultChan <- outcome
		close(h.resultChan)
	})
}

// Result returns the result channel for receiving flow completion.
//
// Channel will receive exactly one outcome and then be closed.
func (h *CallbackHandler) Result() <-chan auth.Outcome {
	return h.resultChan
}

// stripQuery removes the callback parameters from the browser's address
// bar as soon as the page renders.
const stripQuery = `<script>history.replaceState(null, "", window.location.pathname)</script>`

const waitingPage = `
<!DOCTYPE html>
<html>
<head><title>Waiting for Authorization</title></head>
<body>
    <p>Waiting for authorization. Complete the login in the provider window.</p>
</body>
</html>
`

const successPage = `
<!DOCTYPE html>
<html>
<head>
    <title>Login Successful</title>
    ` + stripQuery + `
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #2563eb; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>✓ Login Successful</h1>
        <p>You can close this window and return to the terminal.</p>
    </div>
</body>
</html>
`

const failurePage = `
<!DOCTYPE html>
<html>
<head>
    <title>Login Failed</title>
    ` + stripQuery + `
</head>
<body>
    <p>Login failed (%s). Return to the terminal and try again.</p>
</body>
</html>
`
