package bootstrap

import (
	"strings"

	appconfig "github.com/cashcarbc/voice-intake/internal/config"
	"github.com/cashcarbc/voice-intake/internal/distance"
	"github.com/cashcarbc/voice-intake/pkg/logging"
)

// BuildDistanceLookup wraps the Distance Matrix client in an LRU. A missing
// API key is not fatal: lookups fail and quotes fall back to city pricing.
func BuildDistanceLookup(cfg *appconfig.Config, logger *logging.Logger) distance.Lookup {
	if logger == nil {
		logger = logging.Default()
	}
	if strings.TrimSpace(cfg.GoogleMapsAPIKey) == "" {
		logger.Warn("GOOGLE_MAPS_API_KEY not set; distance lookups will fail and quotes use city pricing")
	}
	client := distance.NewMatrixClient(cfg.DistanceBaseURL, cfg.GoogleMapsAPIKey, logger)
	return distance.NewCachedLookup(client, cfg.DistanceCacheSize)
}
