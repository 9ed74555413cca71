package expo

import "net/http"

// Config configures the push client.
type Config struct {
	// BaseURL overrides the Expo push endpoint, mainly for tests.
	BaseURL string
	// AccessToken is sent as a bearer token when set. The public endpoint
	// does not require one.
	AccessToken string
	HTTPClient  *http.Client
}

// Client talks to the Expo push service.
type Client struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
}

// Message is one push notification addressed to one device token.
type Message struct {
	To        string         `json:"to"`
	Sound     string         `json:"sound,omitempty"`
	Title     string         `json:"title"`
	Body      string         `json:"body"`
	Data      map[string]any `json:"data,omitempty"`
	Priority  string         `json:"priority,omitempty"`
	ChannelID string         `json:"channelId,omitempty"`
}

// Ticket is the per-message receipt in the push service response.
type Ticket struct {
	Status  string `json:"status"`
	ID      string `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
	Details struct {
		Error string `json:"error,omitempty"`
	} `json:"details,omitempty"`
}

// TicketOK is the status of an accepted message.
const TicketOK = "ok"

type sendResponse struct {
	Data []Ticket `json:"data"`
}
