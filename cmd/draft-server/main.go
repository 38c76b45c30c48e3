package main

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"pst-draft-bot/internal/announce"
	"pst-draft-bot/internal/auction"
	"pst-draft-bot/internal/config"
	"pst-draft-bot/internal/logging"
	"pst-draft-bot/internal/roster"
	"pst-draft-bot/internal/session"
	"pst-draft-bot/internal/store"
	httptransport "pst-draft-bot/internal/transport/http"
	"pst-draft-bot/internal/ws"
)

func main() {
	appCfg, err := config.LoadApp()
	if err != nil {
		panic(err)
	}
	logging.Init(appCfg.Log)
	cfg := appCfg.Server
	draftCfg := appCfg.Draft

	ctx := context.Background()

	kv := newKV(ctx, cfg, draftCfg)
	defer kv.Close()

	rosterStore := store.NewRosterStore(kv)
	auc := auction.New(rosterStore, auction.Options{
		TeamSize:   draftCfg.TeamSize,
		LotSeconds: draftCfg.LotSeconds,
		NewLotID:   store.NewID,
	})
	if err := auc.Load(ctx); err != nil {
		log.Fatal().Err(err).Msg("load draft state failed")
	}
	seedFromSheets(ctx, auc, cfg)

	hub := ws.NewHub(draftCfg.League)
	announcers := []session.Announcer{hub}
	if cfg.AnnounceEnabled && cfg.DiscordWebhookURL != "" {
		mgr := announce.NewManager(announce.Config{}, announce.NewDiscordWebhook(cfg.DiscordWebhookURL, 5*time.Second))
		mgr.Start(ctx)
		defer mgr.Close()
		announcers = append(announcers, mgr)
		log.Info().Msg("discord announcements enabled")
	}

	sess := session.New(session.Config{
		League:            draftCfg.League,
		StartSeconds:      draftCfg.StartSeconds,
		NominationSeconds: draftCfg.NominationSeconds,
	}, auc, clockwork.NewRealClock(), fanout(announcers))
	go sess.Run(ctx)
	defer sess.Close()

	r := httptransport.NewRouter(sess, hub, kv, cfg)
	logRoutes(r)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	log.Info().Str("addr", cfg.HTTPAddr).Str("league", draftCfg.League).Msg("http listening")
	log.Fatal().Err(server.ListenAndServe()).Msg("server stopped")
}

func newKV(ctx context.Context, cfg config.ServerConfig, draftCfg config.DraftConfig) store.KV {
	if cfg.UseMemoryStore {
		log.Warn().Msg("using in-memory store; draft state will not survive restarts")
		return store.NewMemory()
	}
	kv, err := store.NewRedis(ctx, store.RedisConfig{
		Addr:      cfg.RedisAddr,
		Password:  cfg.RedisPassword,
		DB:        cfg.RedisDB,
		KeyPrefix: strings.ToLower(draftCfg.League),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis init failed")
	}
	return kv
}

// seedFromSheets ingests sign-up CSVs into an empty roster. A store
// that already holds captains or players is left untouched, so a
// restart never clobbers a draft in progress.
func seedFromSheets(ctx context.Context, auc *auction.Auction, cfg config.ServerConfig) {
	if cfg.CaptainCSV == "" && cfg.PlayerCSV == "" {
		return
	}
	if len(auc.Captains()) > 0 || len(auc.Players()) > 0 {
		log.Info().Msg("roster already populated; skipping sheet ingestion")
		return
	}

	var captains []auction.Captain
	var players []auction.Player
	var err error
	if cfg.CaptainCSV != "" {
		if captains, err = roster.LoadCaptainsFile(cfg.CaptainCSV); err != nil {
			log.Fatal().Err(err).Str("path", cfg.CaptainCSV).Msg("captain sheet ingestion failed")
		}
	}
	if cfg.PlayerCSV != "" {
		if players, err = roster.LoadPlayersFile(cfg.PlayerCSV); err != nil {
			log.Fatal().Err(err).Str("path", cfg.PlayerCSV).Msg("player sheet ingestion failed")
		}
	}
	auc.SeedRoster(ctx, captains, players)
	log.Info().Int("captains", len(captains)).Int("players", len(players)).Msg("roster seeded from sheets")
}

// fanout publishes each event to every announcer.
type fanout []session.Announcer

func (f fanout) Publish(ev announce.Event) {
	for _, a := range f {
		a.Publish(ev)
	}
}

func logRoutes(r chi.Router) {
	type routeDef struct {
		Method string
		Path   string
	}
	routes := make([]routeDef, 0, 32)
	err := chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, routeDef{Method: method, Path: route})
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("walk routes failed")
		return
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Registered routes (%d):\n", len(routes)))
	for _, rt := range routes {
		b.WriteString(fmt.Sprintf("  %-6s %s\n", rt.Method, rt.Path))
	}
	fmt.Print(b.String())
}
