package importer

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pharmaevents/user"
)

const (
	DefaultBatchSize      = 50
	DefaultImportPassword = "ChangeMe123!"
)

// Options controls one import run.
type Options struct {
	BatchSize          int
	PasswordRequired   bool
	DefaultPassword    string
	MaxDisplayedErrors int
	RoleAliases        map[string]user.Role
	// Hash turns a plain password into the stored hash. Defaults to bcrypt.
	Hash   func(string) (string, error)
	Logger *zap.Logger
}

func DefaultOptions() Options {
	return Options{
		BatchSize:          DefaultBatchSize,
		PasswordRequired:   true,
		DefaultPassword:    DefaultImportPassword,
		MaxDisplayedErrors: DefaultMaxDisplayedErrors,
	}
}

func (o Options) withDefaults() Options {
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.MaxDisplayedErrors <= 0 {
		o.MaxDisplayedErrors = DefaultMaxDisplayedErrors
	}
	if o.DefaultPassword == "" {
		o.DefaultPassword = DefaultImportPassword
	}
	if o.Hash == nil {
		o.Hash = user.HashPassword
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// ImportUsers reads a user sheet and creates the valid, non-duplicate rows.
// File and header problems are returned as *FatalError with nothing stored.
func ImportUsers(ctx context.Context, path string, format string, store UserStore, opts Options) (Report, error) {
	opts = opts.withDefaults()
	logger := opts.Logger.With(zap.String("import_id", uuid.NewString()), zap.String("file", path))

	sheet, err := ReadFile(path, format)
	if err != nil {
		fatal := &FatalError{Message: "Error processing file", Err: err}
		switch {
		case errors.Is(err, ErrEmptyFile):
			fatal = &FatalError{Message: "The uploaded file is empty. Please download the template and use the correct format."}
		case errors.Is(err, ErrLegacyWorkbook):
			fatal = &FatalError{Message: "Legacy .xls workbooks are not supported. Please save the file as .xlsx or .csv."}
		}
		logger.Warn("import file rejected", zap.Error(err))
		return FatalReport(fatal), fatal
	}

	cols, err := ResolveColumns(sheet.Headers, opts.PasswordRequired)
	if err != nil {
		logger.Warn("import columns rejected", zap.Strings("headers", sheet.Headers), zap.Error(err))
		var fatal *FatalError
		if errors.As(err, &fatal) {
			return FatalReport(fatal), fatal
		}
		return Report{}, err
	}

	existing, err := store.ExistingEmails(ctx)
	if err != nil {
		fatal := &FatalError{Message: "Database error", Err: err}
		logger.Error("load existing emails", zap.Error(err))
		return FatalReport(fatal), fatal
	}

	detector := NewDuplicateDetector(existing)
	valid := make([]ValidatedUser, 0, len(sheet.Records))
	failures := make([]RowError, 0)
	for _, record := range sheet.Records {
		if record.Blank() {
			continue
		}
		validated, rowErr := ValidateRow(record, cols, opts)
		if rowErr == nil {
			rowErr = detector.CheckUser(validated)
		}
		if rowErr != nil {
			failures = append(failures, *rowErr)
			continue
		}
		detector.Accept(validated.Email)
		valid = append(valid, validated)
	}

	outcomes := Commit(ctx, store, valid, Options{
		BatchSize: opts.BatchSize,
		Hash:      opts.Hash,
		Logger:    logger,
	})
	report := BuildReport(outcomes, failures, opts.MaxDisplayedErrors)

	logger.Info("import finished",
		zap.Int("rows", len(sheet.Records)),
		zap.Int("created", report.SuccessCount),
		zap.Int("failed", report.ErrorCount),
		zap.Int("batches", len(outcomes)),
	)
	return report, nil
}
