package models

import (
	"encoding/json"
)

// Tier is a subscription level
type Tier string

const (
	TierFree    Tier = "free"
	TierStarter Tier = "starter"
	TierPro     Tier = "pro"
	TierPremium Tier = "premium"
)

// LeagueType controls which leagues a tier may use
type LeagueType string

const (
	LeagueTypeAll      LeagueType = "all"
	LeagueTypeTop15    LeagueType = "top15"
	LeagueTypeNonTop15 LeagueType = "non-top15"
)

// AffiliateMode controls whose affiliate link is appended to outgoing text
type AffiliateMode string

const (
	AffiliateOwner AffiliateMode = "owner"
	AffiliateOwn   AffiliateMode = "own"
	AffiliateNone  AffiliateMode = "none"
)

// Capability names recognized in a TierConfig
const (
	FeatureTelegram     = "telegram"
	FeatureAnalytics    = "analytics"
	FeatureSchedule     = "schedule"
	FeatureFootballNews = "football_news"
	FeatureGoalVideos   = "goal_videos"
	FeatureHighlights   = "highlights"
	FeatureAds          = "ads"
)

// Profile represents the subscriber record returned by the backend.
// It is mutated only by a successful authentication response or an
// explicit refresh, and destroyed on logout or session expiry.
type Profile struct {
	ID             int64       `json:"user_id"`
	Email          string      `json:"email"`
	Name           string      `json:"name"`
	Whatsapp       string      `json:"whatsapp,omitempty"`
	Tier           Tier        `json:"tier"`
	IsAdmin        bool        `json:"is_admin"`
	Status         string      `json:"status,omitempty"`
	Top15IDs       []int       `json:"top15_ids,omitempty"`
	TierConfig     *TierConfig `json:"tier_config,omitempty"`
	OwnerAffiliate string      `json:"owner_affiliate,omitempty"`
	DailyLimit     int         `json:"daily_limit,omitempty"`
	CreatedAt      string      `json:"created_at,omitempty"`
}

// FeatureValue holds a capability value that the backend may encode either
// as a boolean or as a variant string (e.g. analytics: false | "basic" | "full").
type FeatureValue struct {
	Enabled bool
	Variant string
}

// UnmarshalJSON accepts bool, string, number or null
func (f *FeatureValue) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = FeatureValue{Enabled: b}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FeatureValue{Enabled: s != "", Variant: s}
		return nil
	}

	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FeatureValue{Enabled: n != 0}
		return nil
	}

	// null or unrecognized shape: capability stays off
	*f = FeatureValue{}
	return nil
}

// MarshalJSON emits the variant string when present, else the boolean
func (f FeatureValue) MarshalJSON() ([]byte, error) {
	if f.Variant != "" {
		return json.Marshal(f.Variant)
	}
	return json.Marshal(f.Enabled)
}

// TierConfig is the authoritative, remote-sourced capability map for a tier.
// The client never widens capabilities locally: a stale or absent TierConfig
// is treated as no capabilities at all.
type TierConfig struct {
	Label        string        `json:"label,omitempty"`
	Price        int           `json:"price,omitempty"`
	Color        string        `json:"color,omitempty"`
	LeagueType   LeagueType    `json:"league_type,omitempty"`
	Telegram     bool          `json:"telegram,omitempty"`
	Channels     int           `json:"channels,omitempty"`
	Affiliate    AffiliateMode `json:"affiliate,omitempty"`
	Watermark    bool          `json:"watermark,omitempty"`
	Analytics    FeatureValue  `json:"analytics,omitempty"`
	Schedule     bool          `json:"schedule,omitempty"`
	FootballNews bool          `json:"football_news,omitempty"`
	GoalVideos   bool          `json:"goal_videos,omitempty"`
	Highlights   bool          `json:"highlights,omitempty"`
	Ads          bool          `json:"ads,omitempty"`
	MaxLeagues   int           `json:"max_leagues,omitempty"`

	// extra keeps the truthiness of capability keys this build does not
	// model yet, so feature gates added backend-first still resolve.
	extra map[string]bool
}

// tierConfigAlias avoids recursing into UnmarshalJSON
type tierConfigAlias TierConfig

// UnmarshalJSON decodes the typed fields and records the truthiness of any
// unrecognized keys
func (tc *TierConfig) UnmarshalJSON(data []byte) error {
	var a tierConfigAlias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for key, val := range raw {
		if knownTierConfigKeys[key] {
			continue
		}
		var fv FeatureValue
		if err := fv.UnmarshalJSON(val); err != nil {
			continue
		}
		if a.extra == nil {
			a.extra = make(map[string]bool)
		}
		a.extra[key] = fv.Enabled
	}

	*tc = TierConfig(a)
	return nil
}

var knownTierConfigKeys = map[string]bool{
	"label": true, "price": true, "color": true, "league_type": true,
	"telegram": true, "channels": true, "affiliate": true, "watermark": true,
	"analytics": true, "schedule": true, "football_news": true,
	"goal_videos": true, "highlights": true, "ads": true, "max_leagues": true,
}

// Feature reports whether the named capability is enabled. Absent keys are
// disabled: authorization fails closed.
func (tc *TierConfig) Feature(name string) bool {
	if tc == nil {
		return false
	}
	switch name {
	case FeatureTelegram:
		return tc.Telegram
	case FeatureAnalytics:
		return tc.Analytics.Enabled
	case FeatureSchedule:
		return tc.Schedule
	case FeatureFootballNews:
		return tc.FootballNews
	case FeatureGoalVideos:
		return tc.GoalVideos
	case FeatureHighlights:
		return tc.Highlights
	case FeatureAds:
		return tc.Ads
	default:
		return tc.extra[name]
	}
}

// Validate normalizes a remote tier config once on profile load so read
// sites never have to re-check enum values. Unknown values collapse to the
// most restrictive interpretation.
func (tc *TierConfig) Validate() {
	if tc == nil {
		return
	}
	switch tc.LeagueType {
	case LeagueTypeAll, LeagueTypeTop15, LeagueTypeNonTop15:
	default:
		tc.LeagueType = LeagueTypeNonTop15
	}
	switch tc.Affiliate {
	case AffiliateOwner, AffiliateOwn, AffiliateNone:
	default:
		tc.Affiliate = AffiliateNone
	}
	if tc.Channels < 0 {
		tc.Channels = 0
	}
}
