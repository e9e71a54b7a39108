package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/solsword/anarchy/internal/family"
)

const (
	defaultSeed                      = 9728182391
	defaultBirthRatePerDay           = 9984
	defaultMinChildbearingAgeYears   = 15
	defaultMaxChildbearingAgeYears   = 40
	defaultAverageChildrenPerMother  = 1
	defaultMaxChildrenPerMother      = 32
	defaultAgeOfMotherMultiplier     = 320
	defaultMaxPartnersPerMother      = 16
	defaultLikelyPartnerAgeGapYears  = 3
	defaultUnlikelyPartnerAgeGap     = 7
	defaultMinPartnerAgeYears        = 20
	defaultMaxPartnerAgeYears        = 40
	defaultLikelyPartnerLikelihood   = 6
	defaultUnlikelyPartnerLikelihood = 4
	defaultMultiplePartnersPercent   = 21

	defaultConfigWaitTimeout = 30 * time.Second
)

// Config bundles every scalar FamilyInfo parameter plus the path to an
// optional YAML overlay file. Env vars take precedence over the built-in
// defaults; a YAML file, if present, takes precedence over both.
type Config struct {
	Seed                     uint64
	BirthRatePerDay          uint64
	MinChildbearingAge       uint64
	MaxChildbearingAge       uint64
	AverageChildrenPerMother uint64
	MaxChildrenPerMother     uint64

	AgeOfMotherDistribution []float64
	AgeOfMotherMultiplier   uint64

	MaxPartnersPerMother      uint64
	LikelyPartnerAgeGap       uint64
	UnlikelyPartnerAgeGap     uint64
	MinPartnerAge             uint64
	MaxPartnerAge             uint64
	LikelyPartnerLikelihood   uint64
	UnlikelyPartnerLikelihood uint64
	MultiplePartnersPercent   uint64

	PartnerSearchPolicy string

	ConfigPath        string
	ConfigWaitTimeout time.Duration
}

// yamlOverlay mirrors Config's tunable fields as pointers, so a YAML file
// can override only the fields it mentions; anything absent leaves the
// env/default value in place. AgeOfMotherDistribution is a plain slice
// since "absent" and "empty" are already distinguishable via nil.
type yamlOverlay struct {
	Seed                      *uint64   `yaml:"seed"`
	BirthRatePerDay           *uint64   `yaml:"birth_rate_per_day"`
	MinChildbearingAge        *uint64   `yaml:"min_childbearing_age"`
	MaxChildbearingAge        *uint64   `yaml:"max_childbearing_age"`
	AverageChildrenPerMother  *uint64   `yaml:"average_children_per_mother"`
	MaxChildrenPerMother      *uint64   `yaml:"max_children_per_mother"`
	AgeOfMotherDistribution   []float64 `yaml:"age_of_mother_distribution"`
	AgeOfMotherMultiplier     *uint64   `yaml:"age_of_mother_multiplier"`
	MaxPartnersPerMother      *uint64   `yaml:"max_partners_per_mother"`
	LikelyPartnerAgeGap       *uint64   `yaml:"likely_partner_age_gap"`
	UnlikelyPartnerAgeGap     *uint64   `yaml:"unlikely_partner_age_gap"`
	MinPartnerAge             *uint64   `yaml:"min_partner_age"`
	MaxPartnerAge             *uint64   `yaml:"max_partner_age"`
	LikelyPartnerLikelihood   *uint64   `yaml:"likely_partner_likelihood"`
	UnlikelyPartnerLikelihood *uint64   `yaml:"unlikely_partner_likelihood"`
	MultiplePartnersPercent   *uint64   `yaml:"multiple_partners_percent"`
	PartnerSearchPolicy       *string   `yaml:"partner_search_policy"`
}

func LoadConfig() Config {
	cfg := Config{
		Seed:                      defaultSeed,
		BirthRatePerDay:           defaultBirthRatePerDay,
		MinChildbearingAge:        defaultMinChildbearingAgeYears * uint64(family.OneEarthYear),
		MaxChildbearingAge:        defaultMaxChildbearingAgeYears * uint64(family.OneEarthYear),
		AverageChildrenPerMother:  defaultAverageChildrenPerMother,
		MaxChildrenPerMother:      defaultMaxChildrenPerMother,
		AgeOfMotherDistribution:   append([]float64(nil), defaultAgeOfMotherDistribution...),
		AgeOfMotherMultiplier:     defaultAgeOfMotherMultiplier,
		MaxPartnersPerMother:      defaultMaxPartnersPerMother,
		LikelyPartnerAgeGap:       defaultLikelyPartnerAgeGapYears * uint64(family.OneEarthYear),
		UnlikelyPartnerAgeGap:     defaultUnlikelyPartnerAgeGap * uint64(family.OneEarthYear),
		MinPartnerAge:             defaultMinPartnerAgeYears * uint64(family.OneEarthYear),
		MaxPartnerAge:             defaultMaxPartnerAgeYears * uint64(family.OneEarthYear),
		LikelyPartnerLikelihood:   defaultLikelyPartnerLikelihood,
		UnlikelyPartnerLikelihood: defaultUnlikelyPartnerLikelihood,
		MultiplePartnersPercent:   defaultMultiplePartnersPercent,
		PartnerSearchPolicy:       "none",
		ConfigWaitTimeout:         defaultConfigWaitTimeout,
	}

	applyEnvOverrides(&cfg)

	cfg.ConfigPath = strings.TrimSpace(firstNonEmpty(
		os.Getenv("FAMILYQUERY_CONFIG_PATH"),
		os.Getenv("CONFIG_PATH"),
	))
	if v := firstNonEmpty(
		os.Getenv("FAMILYQUERY_CONFIG_TIMEOUT_SECONDS"),
		os.Getenv("CONFIG_TIMEOUT_SECONDS"),
	); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil && seconds >= 0 {
			cfg.ConfigWaitTimeout = time.Duration(seconds) * time.Second
		}
	}

	return cfg
}

func applyEnvOverrides(cfg *Config) {
	setUint := func(dest *uint64, names ...string) {
		if v := firstNonEmpty(envAll(names)...); v != "" {
			if n, err := strconv.ParseUint(v, 10, 64); err == nil {
				*dest = n
			}
		}
	}

	setUint(&cfg.Seed, "FAMILYQUERY_SEED")
	setUint(&cfg.BirthRatePerDay, "FAMILYQUERY_BIRTH_RATE_PER_DAY")
	setUint(&cfg.MinChildbearingAge, "FAMILYQUERY_MIN_CHILDBEARING_AGE")
	setUint(&cfg.MaxChildbearingAge, "FAMILYQUERY_MAX_CHILDBEARING_AGE")
	setUint(&cfg.AverageChildrenPerMother, "FAMILYQUERY_AVERAGE_CHILDREN_PER_MOTHER")
	setUint(&cfg.MaxChildrenPerMother, "FAMILYQUERY_MAX_CHILDREN_PER_MOTHER")
	setUint(&cfg.AgeOfMotherMultiplier, "FAMILYQUERY_AGE_OF_MOTHER_MULTIPLIER")
	setUint(&cfg.MaxPartnersPerMother, "FAMILYQUERY_MAX_PARTNERS_PER_MOTHER")
	setUint(&cfg.LikelyPartnerAgeGap, "FAMILYQUERY_LIKELY_PARTNER_AGE_GAP")
	setUint(&cfg.UnlikelyPartnerAgeGap, "FAMILYQUERY_UNLIKELY_PARTNER_AGE_GAP")
	setUint(&cfg.MinPartnerAge, "FAMILYQUERY_MIN_PARTNER_AGE")
	setUint(&cfg.MaxPartnerAge, "FAMILYQUERY_MAX_PARTNER_AGE")
	setUint(&cfg.LikelyPartnerLikelihood, "FAMILYQUERY_LIKELY_PARTNER_LIKELIHOOD")
	setUint(&cfg.UnlikelyPartnerLikelihood, "FAMILYQUERY_UNLIKELY_PARTNER_LIKELIHOOD")
	setUint(&cfg.MultiplePartnersPercent, "FAMILYQUERY_MULTIPLE_PARTNERS_PERCENT")

	if v := firstNonEmpty(envAll([]string{"FAMILYQUERY_PARTNER_SEARCH_POLICY"})...); v != "" {
		cfg.PartnerSearchPolicy = v
	}
}

func envAll(names []string) []string {
	values := make([]string, len(names))
	for i, n := range names {
		values[i] = os.Getenv(n)
	}
	return values
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed != "" {
			return trimmed
		}
	}
	return ""
}

var defaultAgeOfMotherDistribution = []float64{
	1, 2, 4, 7, 10, 13, 15, 15, 13, 10, 7, 4, 2, 1,
}

// waitForConfigFile blocks until path exists, ctx is done, or the
// configured timeout elapses, whichever comes first. It is the only
// blocking operation in this command.
func waitForConfigFile(ctx context.Context, path string, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if _, err := os.Stat(path); err == nil {
		return nil
	}

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	attempts := 0
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timed out waiting for config file %s: %w", path, ctx.Err())
		case <-ticker.C:
			attempts++
			if _, err := os.Stat(path); err == nil {
				return nil
			}
			if attempts%10 == 0 {
				log.Printf("  Still waiting for %s...\n", path)
			}
		}
	}
}

func applyYAMLOverlay(cfg *Config, data []byte) error {
	var overlay yamlOverlay
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return err
	}

	if overlay.Seed != nil {
		cfg.Seed = *overlay.Seed
	}
	if overlay.BirthRatePerDay != nil {
		cfg.BirthRatePerDay = *overlay.BirthRatePerDay
	}
	if overlay.MinChildbearingAge != nil {
		cfg.MinChildbearingAge = *overlay.MinChildbearingAge
	}
	if overlay.MaxChildbearingAge != nil {
		cfg.MaxChildbearingAge = *overlay.MaxChildbearingAge
	}
	if overlay.AverageChildrenPerMother != nil {
		cfg.AverageChildrenPerMother = *overlay.AverageChildrenPerMother
	}
	if overlay.MaxChildrenPerMother != nil {
		cfg.MaxChildrenPerMother = *overlay.MaxChildrenPerMother
	}
	if overlay.AgeOfMotherDistribution != nil {
		cfg.AgeOfMotherDistribution = overlay.AgeOfMotherDistribution
	}
	if overlay.AgeOfMotherMultiplier != nil {
		cfg.AgeOfMotherMultiplier = *overlay.AgeOfMotherMultiplier
	}
	if overlay.MaxPartnersPerMother != nil {
		cfg.MaxPartnersPerMother = *overlay.MaxPartnersPerMother
	}
	if overlay.LikelyPartnerAgeGap != nil {
		cfg.LikelyPartnerAgeGap = *overlay.LikelyPartnerAgeGap
	}
	if overlay.UnlikelyPartnerAgeGap != nil {
		cfg.UnlikelyPartnerAgeGap = *overlay.UnlikelyPartnerAgeGap
	}
	if overlay.MinPartnerAge != nil {
		cfg.MinPartnerAge = *overlay.MinPartnerAge
	}
	if overlay.MaxPartnerAge != nil {
		cfg.MaxPartnerAge = *overlay.MaxPartnerAge
	}
	if overlay.LikelyPartnerLikelihood != nil {
		cfg.LikelyPartnerLikelihood = *overlay.LikelyPartnerLikelihood
	}
	if overlay.UnlikelyPartnerLikelihood != nil {
		cfg.UnlikelyPartnerLikelihood = *overlay.UnlikelyPartnerLikelihood
	}
	if overlay.MultiplePartnersPercent != nil {
		cfg.MultiplePartnersPercent = *overlay.MultiplePartnersPercent
	}
	if overlay.PartnerSearchPolicy != nil {
		cfg.PartnerSearchPolicy = *overlay.PartnerSearchPolicy
	}

	return nil
}

// BuildFamilyInfo constructs a family.FamilyInfo from the resolved Config.
func BuildFamilyInfo(cfg Config) (family.FamilyInfo, error) {
	policy := family.PartnerPolicyNone
	switch strings.ToLower(strings.TrimSpace(cfg.PartnerSearchPolicy)) {
	case "", "none":
		policy = family.PartnerPolicyNone
	case "retry":
		policy = family.PartnerPolicyRetry
	default:
		return family.FamilyInfo{}, fmt.Errorf("unrecognized partner_search_policy %q", cfg.PartnerSearchPolicy)
	}

	return family.NewFamilyInfo(
		cfg.Seed,
		cfg.BirthRatePerDay,
		cfg.MinChildbearingAge,
		cfg.MaxChildbearingAge,
		cfg.AverageChildrenPerMother,
		cfg.MaxChildrenPerMother,
		cfg.AgeOfMotherDistribution,
		cfg.AgeOfMotherMultiplier,
		cfg.MaxPartnersPerMother,
		cfg.LikelyPartnerAgeGap,
		cfg.UnlikelyPartnerAgeGap,
		cfg.MinPartnerAge,
		cfg.MaxPartnerAge,
		cfg.LikelyPartnerLikelihood,
		cfg.UnlikelyPartnerLikelihood,
		cfg.MultiplePartnersPercent,
		policy,
	)
}
