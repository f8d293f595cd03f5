package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config is built once from viper at command entry and handed to each
// component; nothing below cmd reads ambient configuration.
type Config struct {
	BaseURL string
	Token   string

	SendgridKey string
	FromEmail   string
	FromName    string
	Recipients  []string

	ModeOverride     string
	Location         *time.Location
	StateDB          string
	HighStakesPoints float64
	TruncateLength   int
}

func loadConfig() (*Config, error) {
	cfg := &Config{
		BaseURL:          viper.GetString("canvas.base_url"),
		Token:            viper.GetString("canvas.token"),
		SendgridKey:      viper.GetString("email.sendgrid_key"),
		FromEmail:        viper.GetString("email.from"),
		FromName:         viper.GetString("email.from_name"),
		Recipients:       viper.GetStringSlice("email.recipients"),
		ModeOverride:     viper.GetString("digest.mode"),
		StateDB:          viper.GetString("digest.state_db"),
		HighStakesPoints: viper.GetFloat64("digest.high_stakes_points"),
		TruncateLength:   viper.GetInt("digest.truncate_length"),
	}

	if cfg.Token == "" {
		return nil, errors.New("canvas.token is not set; add it to the config file")
	}

	tz := viper.GetString("digest.timezone")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid digest.timezone %q: %w", tz, err)
	}
	cfg.Location = loc

	return cfg, nil
}

// mailReady reports whether delivery credentials are configured. A dry run
// does not need them.
func (c *Config) mailReady() error {
	if c.SendgridKey == "" || c.FromEmail == "" || len(c.Recipients) == 0 {
		return errors.New("email.sendgrid_key, email.from and email.recipients must be set to deliver digests")
	}
	return nil
}
