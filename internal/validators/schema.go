package validators

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/lightway-xas/lightway/internal/core/domain"
)

// Default allow-lists for the experiment block.
var (
	DefaultFacilities = []string{"NSLSII"}
	DefaultBeamlines  = []string{"ISS"}
)

// SampleMetadata names the absorbing element and edge.
type SampleMetadata struct {
	Element string `json:"element" validate:"required,xas_element"`
	Edge    string `json:"edge" validate:"required,xas_edge"`
}

// ExperimentMetadata names where the scan was measured. Extra keys are allowed
// and not decoded.
type ExperimentMetadata struct {
	Facility string `json:"facility" validate:"required,xas_facility"`
	Beamline string `json:"beamline" validate:"required,xas_beamline"`
	SampleID string `json:"sample_id" validate:"required"`
}

// XASDocument is the typed view of an ExperimentalXAS metadata document.
type XASDocument struct {
	SampleMetadata     *SampleMetadata     `json:"sample_metadata" validate:"required"`
	ExperimentMetadata *ExperimentMetadata `json:"experiment_metadata" validate:"required"`
	MeasurementType    string              `json:"measurement_type" validate:"omitempty,eq=xas"`
	Dataset            string              `json:"dataset" validate:"required"`
}

// Schema validates store-shaped records against the ExperimentalXAS schema.
type Schema struct {
	validate   *validator.Validate
	vocab      *Vocabulary
	facilities []string
	beamlines  []string
}

// SchemaOption configures a Schema.
type SchemaOption func(*Schema)

// WithVocabulary replaces the element and edge vocabulary.
func WithVocabulary(v *Vocabulary) SchemaOption {
	return func(s *Schema) {
		s.vocab = v
	}
}

// WithFacilities replaces the facility allow-list.
func WithFacilities(facilities ...string) SchemaOption {
	return func(s *Schema) {
		s.facilities = facilities
	}
}

// WithBeamlines replaces the beamline allow-list.
func WithBeamlines(beamlines ...string) SchemaOption {
	return func(s *Schema) {
		s.beamlines = beamlines
	}
}

// NewSchema creates a schema validator. Without WithVocabulary the embedded
// default vocabulary is used.
func NewSchema(opts ...SchemaOption) (*Schema, error) {
	s := &Schema{
		facilities: DefaultFacilities,
		beamlines:  DefaultBeamlines,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.vocab == nil {
		vocab, err := DefaultVocabulary()
		if err != nil {
			return nil, err
		}
		s.vocab = vocab
	}

	v := validator.New()
	if err := registerValidations(v, map[string]func(string) bool{
		"xas_element":  s.vocab.HasElement,
		"xas_edge":     s.vocab.HasEdge,
		"xas_facility": func(f string) bool { return slices.Contains(s.facilities, f) },
		"xas_beamline": func(b string) bool { return slices.Contains(s.beamlines, b) },
	}); err != nil {
		return nil, err
	}

	// Use JSON tag names in violation messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	s.validate = v
	return s, nil
}

func registerValidations(v *validator.Validate, checks map[string]func(string) bool) error {
	for tag, check := range checks {
		err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return check(fl.Field().String())
		})
		if err != nil {
			return fmt.Errorf("failed to register %s: %w", tag, err)
		}
	}
	return nil
}

// Validate checks the structure family, the required columns and the
// metadata document. Every violation is collected.
func (s *Schema) Validate(structureFamily string, data *domain.Table, metadata map[string]any) *domain.ValidationError {
	ve := &domain.ValidationError{}

	checkStructureFamily(structureFamily, ve)
	checkColumns(data, ve)
	ve.Merge(s.ValidateMetadata(metadata))

	return ve
}

// ValidateMetadata checks a metadata document against XASDocument.
func (s *Schema) ValidateMetadata(metadata map[string]any) *domain.ValidationError {
	ve := &domain.ValidationError{}

	doc, err := decodeDocument(metadata)
	if err != nil {
		ve.Add("%v", err)
	}

	if err := s.validate.Struct(doc); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			ve.Add("%v", err)
			return ve
		}
		for _, fe := range fieldErrs {
			ve.Add("%s", s.formatFieldError(fe))
		}
	}
	return ve
}

// decodeDocument converts a generic metadata document into its typed view.
// A type mismatch is reported but decoding continues with the other fields.
func decodeDocument(metadata map[string]any) (*XASDocument, error) {
	doc := &XASDocument{}
	raw, err := json.Marshal(metadata)
	if err != nil {
		return doc, fmt.Errorf("metadata is not a JSON document: %w", err)
	}
	if err := json.Unmarshal(raw, doc); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return doc, fmt.Errorf("%s must be a %s, got %s", typeErr.Field, typeErr.Type, typeErr.Value)
		}
		return doc, fmt.Errorf("metadata does not match the XAS schema: %w", err)
	}
	return doc, nil
}

// formatFieldError renders a field error as "path: message".
func (s *Schema) formatFieldError(fe validator.FieldError) string {
	path := fe.Namespace()
	if _, rest, ok := strings.Cut(path, "."); ok {
		path = rest
	}
	value := fe.Value()

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", path)
	case "eq":
		return fmt.Sprintf("%s must be %q, got %q", path, fe.Param(), value)
	case "xas_element":
		return fmt.Sprintf("%s: %q is not a valid element", path, value)
	case "xas_edge":
		return fmt.Sprintf("%s: %q is not a valid edge", path, value)
	case "xas_facility":
		return fmt.Sprintf("%s: %q is not a valid facility [%s]", path, value, strings.Join(s.facilities, ", "))
	case "xas_beamline":
		return fmt.Sprintf("%s: %q is not a valid beamline [%s]", path, value, strings.Join(s.beamlines, ", "))
	default:
		return fmt.Sprintf("%s failed %s validation", path, fe.Tag())
	}
}
