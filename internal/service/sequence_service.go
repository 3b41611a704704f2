package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"pyra-workspace/internal/core/domain"
	"pyra-workspace/internal/core/ports"

	"github.com/rs/zerolog"
)

// sequenceProbeAttempts bounds the existence-probe loop before the
// generator degrades to a timestamp fallback.
const sequenceProbeAttempts = 5

// sequenceService implements ports.SequenceService. It allocates
// human-readable document numbers of the form {prefix}-{NNNN}. The probe
// loop only narrows the race window; the UNIQUE constraint on
// documents.number is the authoritative guard.
type sequenceService struct {
	docRepo       ports.DocumentRepository
	settingsRepo  ports.SettingsRepository
	quotePrefix   string
	invoicePrefix string
	log           zerolog.Logger
}

// NewSequenceService creates a new document number generator. The prefix
// arguments are the configured defaults, used when neither an override nor
// a settings row applies.
func NewSequenceService(
	docRepo ports.DocumentRepository,
	settingsRepo ports.SettingsRepository,
	quotePrefix, invoicePrefix string,
	log zerolog.Logger,
) ports.SequenceService {
	return &sequenceService{
		docRepo:       docRepo,
		settingsRepo:  settingsRepo,
		quotePrefix:   quotePrefix,
		invoicePrefix: invoicePrefix,
		log:           log,
	}
}

// NextNumber returns the next free number for the document type. It never
// fails: any repository error or probe exhaustion degrades to a
// base36-timestamp fallback that is unique for all practical purposes.
func (s *sequenceService) NextNumber(ctx context.Context, docType domain.DocumentType, prefixOverride string) string {
	prefix := s.resolvePrefix(ctx, docType, prefixOverride)

	highest, err := s.docRepo.HighestNumber(ctx, prefix)
	if err != nil {
		s.log.Error().Err(err).Str("prefix", prefix).Msg("sequence: highest number lookup failed, using fallback")
		return fallbackNumber(prefix)
	}

	next := parseTrailingDigits(highest) + 1

	for i := 0; i < sequenceProbeAttempts; i++ {
		candidate := fmt.Sprintf("%s-%04d", prefix, next+int64(i))
		exists, err := s.docRepo.NumberExists(ctx, candidate)
		if err != nil {
			s.log.Error().Err(err).Str("candidate", candidate).Msg("sequence: existence probe failed, using fallback")
			return fallbackNumber(prefix)
		}
		if !exists {
			return candidate
		}
	}

	s.log.Warn().Str("prefix", prefix).Int64("next", next).Msg("sequence: probe attempts exhausted, using fallback")
	return fallbackNumber(prefix)
}

// resolvePrefix picks the number prefix: explicit override first, then the
// workspace setting, then the configured default.
func (s *sequenceService) resolvePrefix(ctx context.Context, docType domain.DocumentType, override string) string {
	if override != "" {
		return override
	}

	key := domain.SettingQuotePrefix
	fallback := s.quotePrefix
	if docType == domain.DocumentTypeInvoice {
		key = domain.SettingInvoicePrefix
		fallback = s.invoicePrefix
	}

	value, err := s.settingsRepo.Get(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("sequence: settings lookup failed, using default prefix")
		return fallback
	}
	if value != "" {
		return value
	}
	return fallback
}

// parseTrailingDigits extracts the numeric run at the end of a document
// number, e.g. "QT-0042" -> 42. Returns 0 when there is none, including
// for timestamp fallback numbers whose base36 tail ends in a letter.
func parseTrailingDigits(number string) int64 {
	if number == "" {
		return 0
	}
	end := len(number)
	start := end
	for start > 0 && number[start-1] >= '0' && number[start-1] <= '9' {
		start--
	}
	if start == end {
		return 0
	}
	value, err := strconv.ParseInt(number[start:end], 10, 64)
	if err != nil {
		return 0
	}
	return value
}

// fallbackNumber builds a {prefix}-{base36 unix millis} number. Collisions
// would need two fallbacks in the same millisecond for the same prefix.
func fallbackNumber(prefix string) string {
	return prefix + "-" + strconv.FormatInt(time.Now().UnixMilli(), 36)
}
