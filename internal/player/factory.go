package player

import (
	"github.com/PizzaHomicide/shuchu/internal/config"
	"github.com/PizzaHomicide/shuchu/internal/log"
)

// CreateVideoPlayer creates a new video player based on the configuration
func CreateVideoPlayer(cfg *config.Config) VideoPlayer {
	playerType := PlayerType(cfg.Player.Type)
	log.Info("Creating video player", "type", playerType)

	switch playerType {
	case PlayerTypeMPV:
		return NewMPVPlayer(cfg)
	default:
		log.Warn("Unknown player type, falling back to MPV", "type", playerType)
		return NewMPVPlayer(cfg)
	}
}
