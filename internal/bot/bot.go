package bot

import (
	"context"
	"log/slog"

	"github.com/disgoorg/disgo"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/cache"
	"github.com/disgoorg/disgo/gateway"
	"github.com/disgoorg/disgolink/v3/disgolink"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/uzih05/lavalink-relay-bot/internal/command"
	"github.com/uzih05/lavalink-relay-bot/internal/config"
	"github.com/uzih05/lavalink-relay-bot/internal/player"
	"github.com/uzih05/lavalink-relay-bot/internal/playback"
	"github.com/uzih05/lavalink-relay-bot/internal/search"
)

const eventBuffer = 64

type Bot struct {
	Client      bot.Client
	Lavalink    disgolink.Client
	Coordinator *playback.Coordinator
	Dispatcher  *command.Dispatcher

	cfg    *config.Config
	voice  *voiceGateway
	events chan playback.Event
}

func NewBot(cfg *config.Config) (*Bot, error) {
	b := &Bot{
		cfg:    cfg,
		events: make(chan playback.Event, eventBuffer),
	}

	client, err := disgo.New(cfg.Token,
		bot.WithGatewayConfigOpts(
			gateway.WithIntents(
				gateway.IntentGuilds,
				gateway.IntentGuildMessages,
				gateway.IntentMessageContent,
				gateway.IntentGuildVoiceStates,
			),
		),
		bot.WithCacheConfigOpts(
			cache.WithCaches(cache.FlagVoiceStates),
		),
		bot.WithEventListenerFunc(b.onMessageCreate),
		bot.WithEventListenerFunc(b.onVoiceStateUpdate),
		bot.WithEventListenerFunc(b.onVoiceServerUpdate),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create discord client")
	}

	b.Client = client
	b.voice = newVoiceGateway(client)
	b.Lavalink = disgolink.New(client.ApplicationID(),
		disgolink.WithListenerFunc(b.onTrackStart),
		disgolink.WithListenerFunc(b.onTrackEnd),
		disgolink.WithListenerFunc(b.onTrackException),
		disgolink.WithListenerFunc(b.onTrackStuck),
	)

	b.Coordinator = playback.NewCoordinator(
		player.NewRegistry(),
		b.voice,
		newAudioNode(b.Lavalink),
		playback.WithNotifier(b),
		playback.WithSearchCache(search.NewCache(cfg.SearchCacheTTL)),
		playback.WithCallTimeout(cfg.CallTimeout),
		playback.WithIdleTimeout(cfg.IdleTimeout),
		playback.WithJoinCommand(cfg.Prefix+"join"),
	)

	b.Dispatcher = command.NewDispatcher(cfg.Prefix, b,
		command.WithRateLimit(rate.Limit(cfg.CommandRate), cfg.CommandBurst),
	)
	b.Dispatcher.Register(b.commands()...)

	return b, nil
}

func (b *Bot) Start(ctx context.Context) error {
	b.registerLavalinkNodes(ctx)

	go b.Coordinator.Run(ctx, b.events)

	if err := b.Client.OpenGateway(ctx); err != nil {
		return errors.Wrap(err, "failed to open gateway")
	}
	return nil
}

func (b *Bot) Stop(ctx context.Context) {
	b.Coordinator.Shutdown(ctx)
	b.Lavalink.Close()
	b.Client.Close(ctx)
}

// registerLavalinkNodes does not fail startup: without a node, playback
// commands report the error to the user instead.
func (b *Bot) registerLavalinkNodes(ctx context.Context) {
	lc := b.cfg.Lavalink
	node, err := b.Lavalink.AddNode(ctx, disgolink.NodeConfig{
		Name:     lc.Name,
		Address:  lc.Address(),
		Password: lc.Password,
		Secure:   lc.Secure,
	})
	if err != nil {
		slog.Error("failed to connect lavalink node", "address", lc.Address(), "error", err)
		return
	}

	slog.Info("lavalink node connected", "name", node.Config().Name)
}
