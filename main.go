package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/brushtoy/prefabs"
	"github.com/milk9111/brushtoy/replication"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	baseWidth  = 1280
	baseHeight = 720
)

func main() {
	debug := flag.Bool("debug", false, "enable debug mode")
	relay := flag.String("relay", "", "relay websocket url, e.g. ws://host:8080/ws")
	discover := flag.Bool("discover", false, "find a relay on the local network over mDNS")
	imageRef := flag.String("image", "", "fill image (path, http(s) url or data uri) applied with I")
	site := flag.String("site", "", "site id announced to the relay (random when empty)")
	prefabDir := flag.String("prefabs", prefabs.Dir, "directory with prefab overrides")
	exportDir := flag.String("export", ".", "directory for PDF snapshots")
	flag.Parse()

	logger, err := newLogger(*debug)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	prefabs.Dir = *prefabDir
	if *site == "" {
		*site = uuid.NewString()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	url := *relay
	if url == "" && *discover {
		found, err := replication.Discover(ctx, 3*time.Second)
		if err != nil {
			logger.Warn("relay discovery failed, running offline", zap.Error(err))
		} else {
			url = found
		}
	}

	var client *replication.Client
	if url != "" {
		client, err = replication.Dial(ctx, url, *site, logger)
		if err != nil {
			logger.Warn("relay unavailable, running offline", zap.String("url", url), zap.Error(err))
		} else {
			logger.Info("connected to relay", zap.String("url", url), zap.String("site", *site))
			g.Go(func() error { return client.Run(ctx) })
		}
	}

	imageDirs := []string{".", "assets"}
	if filepath.IsAbs(*imageRef) {
		// an absolute -image path makes its directory a loader root
		imageDirs = append(imageDirs, filepath.Dir(*imageRef))
	}
	game, err := NewGame(GameOptions{
		Debug:     *debug,
		ImageRef:  *imageRef,
		ImageDirs: imageDirs,
		ExportDir: *exportDir,
		Client:    client,
	}, logger)
	if err != nil {
		logger.Fatal("create game", zap.Error(err))
	}
	defer game.Close()

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(game.width, game.height)
	ebiten.SetWindowTitle("brushtoy")
	ebiten.SetTPS(game.tps)

	runErr := ebiten.RunGame(game)
	stop()
	if client != nil {
		_ = client.Close()
	}
	if err := g.Wait(); err != nil {
		logger.Warn("relay connection", zap.Error(err))
	}
	if runErr != nil {
		logger.Fatal("run game", zap.Error(runErr))
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
