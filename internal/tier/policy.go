package tier

import (
	"github.com/roychid/t3n28-football/pkg/models"
)

// DefaultTop15LeagueIDs is the last-resort fallback set of well-known
// league identifiers. It is only consulted when the profile carries no
// top15 set of its own; a profile-provided set always wins.
var DefaultTop15LeagueIDs = []int{39, 140, 135, 78, 61, 2, 3, 88, 94, 144, 253, 45, 848, 4, 1}

// ProfileSource supplies the current subscriber profile
type ProfileSource interface {
	Profile() *models.Profile
}

// Policy derives authorization decisions from the current profile.
// All reads are pure and fail closed: missing data means no capability.
type Policy struct {
	profiles ProfileSource
}

// New creates a tier policy reading through the given profile source
func New(profiles ProfileSource) *Policy {
	return &Policy{profiles: profiles}
}

func (p *Policy) config() *models.TierConfig {
	profile := p.profiles.Profile()
	if profile == nil {
		return nil
	}
	return profile.TierConfig
}

// IsFeatureAllowed reports whether the named capability is enabled for
// the current tier. Absent config means no capabilities.
func (p *Policy) IsFeatureAllowed(feature string) bool {
	return p.config().Feature(feature)
}

// CanUseLeague reports whether the current tier may use the given league
func (p *Policy) CanUseLeague(leagueID int) bool {
	cfg := p.config()

	leagueType := models.LeagueTypeNonTop15
	if cfg != nil && cfg.LeagueType != "" {
		leagueType = cfg.LeagueType
	}

	if leagueType == models.LeagueTypeAll {
		return true
	}

	ids := DefaultTop15LeagueIDs
	if profile := p.profiles.Profile(); profile != nil && len(profile.Top15IDs) > 0 {
		ids = profile.Top15IDs
	}

	inTop15 := false
	for _, id := range ids {
		if id == leagueID {
			inTop15 = true
			break
		}
	}

	if leagueType == models.LeagueTypeTop15 {
		return inTop15
	}
	return !inTop15
}

// ChannelLimit returns the maximum number of delivery channels usable in
// one broadcast. Zero when the config is absent.
func (p *Policy) ChannelLimit() int {
	cfg := p.config()
	if cfg == nil {
		return 0
	}
	return cfg.Channels
}

// AffiliateMode returns whose affiliate link is appended to outgoing
// text. None when the config is absent.
func (p *Policy) AffiliateMode() models.AffiliateMode {
	cfg := p.config()
	if cfg == nil || cfg.Affiliate == "" {
		return models.AffiliateNone
	}
	return cfg.Affiliate
}

// WatermarkEnabled reports whether the footer branding is appended
func (p *Policy) WatermarkEnabled() bool {
	cfg := p.config()
	if cfg == nil {
		return false
	}
	return cfg.Watermark
}

// Label returns the display name of the current tier
func (p *Policy) Label() string {
	cfg := p.config()
	if cfg == nil {
		return ""
	}
	return cfg.Label
}

// OwnerAffiliateLink returns the owner's configured affiliate link, or
// the given fallback when the profile carries none.
func (p *Policy) OwnerAffiliateLink(fallback string) string {
	profile := p.profiles.Profile()
	if profile != nil && profile.OwnerAffiliate != "" {
		return profile.OwnerAffiliate
	}
	return fallback
}
