package config

import (
	. "github.com/black-desk/lib/go/errwrap"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func New(opts ...Opt) (ret *Config, err error) {
	defer Wrap(&err, "load configuration")

	cfg := &Config{}
	for i := range opts {
		cfg, err = opts[i](cfg)
		if err != nil {
			return
		}
	}

	if cfg.log == nil {
		cfg.log = zap.NewNop().Sugar()
	}

	if cfg.Version == "" {
		err = ErrContentMissing
		return
	}

	err = cfg.check()
	if err != nil {
		return
	}

	ret = cfg
	return
}

type Opt func(cfg *Config) (ret *Config, err error)

func WithContent(content []byte) Opt {
	return func(cfg *Config) (ret *Config, err error) {
		err = yaml.Unmarshal(content, cfg)
		if err != nil {
			Wrap(&err, "unmarshal configuration")
			return
		}

		ret = cfg
		return
	}
}

func WithLogger(log *zap.SugaredLogger) Opt {
	return func(cfg *Config) (ret *Config, err error) {
		if log == nil {
			err = ErrLoggerMissing
			return
		}

		cfg.log = log
		ret = cfg
		return
	}
}
