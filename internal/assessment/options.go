package assessment

import (
	"assessment-workers/internal/common/config"
	"assessment-workers/internal/common/logger"
)

// NewFromConfig builds an engine from the assessment section of the app
// config, loading an external bank when bank_path is set.
func NewFromConfig(cfg config.AssessmentConfig, log logger.Logger) (*Engine, error) {
	opts := []Option{
		WithTotalQuestions(cfg.TotalQuestions),
		WithTimeBuffer(cfg.TimeBufferPercent),
	}
	if log != nil {
		opts = append(opts, WithLogger(log))
	}
	if cfg.Seed != nil {
		opts = append(opts, WithSeed(*cfg.Seed))
	}
	if cfg.BankPath != "" {
		bank, err := LoadBankFile(cfg.BankPath)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithBank(bank))
	}
	return New(opts...)
}
