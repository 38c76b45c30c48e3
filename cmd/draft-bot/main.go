// draft-bot is a scripted captain for exercising a draft server. It
// watches the spectator feed and reacts like a (not very bright)
// captain: nominates the configured target when its turn comes up and
// raises random amounts on live lots.
package main

import (
	"bytes"
	"encoding/json"
	"log"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
)

type feedMessage struct {
	Type  string `json:"type"`
	Event struct {
		Type        string `json:"type"`
		Captain     string `json:"captain"`
		Player      string `json:"player"`
		Amount      int    `json:"amount"`
		SecondsLeft int    `json:"seconds_left"`
	} `json:"event"`
}

type client struct {
	base    string
	captain string
	http    *http.Client
}

func main() {
	wsURL := getenv("WS_URL", "ws://localhost:8080/ws/spectate")
	apiURL := getenv("API_URL", "http://localhost:8080")
	captain := getenv("CAPTAIN", "bot")
	maxBid, _ := strconv.Atoi(getenv("MAX_BID", "300"))
	if maxBid <= 0 {
		maxBid = 300
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	c := &client{base: apiURL, captain: captain, http: &http.Client{Timeout: 5 * time.Second}}
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	log.Printf("bot %s watching %s", captain, wsURL)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg feedMessage
		if err := json.Unmarshal(data, &msg); err != nil || msg.Type != "event" {
			continue
		}
		switch msg.Event.Type {
		case "nomination_turn":
			if msg.Event.Captain == captain {
				c.nominateCheapest()
			}
		case "lot_opened", "bid_placed":
			if msg.Event.Captain == captain {
				continue
			}
			bid := msg.Event.Amount + 5*(1+rnd.Intn(6))
			if bid > maxBid {
				continue
			}
			c.bid(bid)
		}
	}
}

// nominateCheapest asks the server for the player pool and nominates
// the lowest-MMR unpicked player, the classic budget-captain move.
func (c *client) nominateCheapest() {
	resp, err := c.http.Get(c.base + "/api/draft/players")
	if err != nil {
		log.Printf("fetch players: %v", err)
		return
	}
	defer resp.Body.Close()
	var players []struct {
		Name     string  `json:"name"`
		MMR      float64 `json:"mmr"`
		IsPicked bool    `json:"is_picked"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&players); err != nil {
		log.Printf("decode players: %v", err)
		return
	}
	pick := ""
	for i := len(players) - 1; i >= 0; i-- {
		if !players[i].IsPicked {
			pick = players[i].Name
			break
		}
	}
	if pick == "" {
		return
	}
	c.post("/api/draft/nominate", map[string]any{"player": pick})
}

func (c *client) bid(amount int) {
	c.post("/api/draft/bid", map[string]any{"amount": amount})
}

func (c *client) post(path string, body any) {
	payload, _ := json.Marshal(body)
	req, err := http.NewRequest(http.MethodPost, c.base+path, bytes.NewReader(payload))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Requester", c.captain)
	resp, err := c.http.Do(req)
	if err != nil {
		log.Printf("POST %s: %v", path, err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		log.Printf("POST %s: status %d", path, resp.StatusCode)
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
