package classify

import (
	"strings"
	"testing"
	"time"

	"github.com/haxia/expense-integrator/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() models.ExpenseReport {
	return models.ExpenseReport{
		ID:                     "9001",
		ReportNumber:           "112",
		EmployeeIdentification: "12.345.678-9",
		EmployeeName:           "Ana Morales",
		PolicyName:             "Rendiciones Generales",
		ApprovedTotal:          decimal.NewFromInt(45000),
		SendDate:               time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC),
		ExtraFields: []models.ExtraField{
			{Code: "EMP", Value: "ACME"},
			{Code: "RG", Value: "Rendición"},
		},
	}
}

func TestClassify_Company(t *testing.T) {
	tests := []struct {
		name           string
		identification string
		companyField   string
		expected       string
	}{
		{
			name:           "company comes from the first extra field",
			identification: "12.345.678-9",
			companyField:   "ACME",
			expected:       "ACME",
		},
		{
			name:           "holding tax id overrides the company field",
			identification: "77.235.100-6",
			companyField:   "ACME",
			expected:       "HAXIA",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := sampleReport()
			report.EmployeeIdentification = tt.identification
			report.ExtraFields[0].Value = tt.companyField

			classification, err := Classify(report)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, classification.Company)
		})
	}
}

func TestClassify_PolicyAccount(t *testing.T) {
	tests := []struct {
		name     string
		policy   string
		expected string
	}{
		{
			name:     "tagged policy maps to the liability account",
			policy:   "Rendiciones Caja Chica (CCH)",
			expected: "2-1-03-07-002",
		},
		{
			name:     "untagged policy maps to the default account",
			policy:   "Rendiciones Generales",
			expected: "1-1-01-07-003",
		},
		{
			name:     "tag must be a suffix",
			policy:   "(CCH) Rendiciones",
			expected: "1-1-01-07-003",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := sampleReport()
			report.PolicyName = tt.policy

			classification, err := Classify(report)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, classification.PolicyAccount)
		})
	}
}

func TestClassify_FundExclusion(t *testing.T) {
	report := sampleReport()
	report.ExtraFields[1].Code = "FXR"

	classification, err := Classify(report)
	require.NoError(t, err)
	assert.True(t, classification.Excluded)

	report.ExtraFields[1].Code = "RG"
	classification, err = Classify(report)
	require.NoError(t, err)
	assert.False(t, classification.Excluded)
}

func TestClassify_MalformedIdentification(t *testing.T) {
	tests := []struct {
		name           string
		identification string
	}{
		{name: "no check digit separator", identification: "12345678"},
		{name: "empty base number", identification: "-9"},
		{name: "dots only", identification: "...-9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := sampleReport()
			report.EmployeeIdentification = tt.identification

			_, err := Classify(report)
			assert.ErrorIs(t, err, ErrMalformedTaxID)
		})
	}
}

func TestClassify_MissingExtraFields(t *testing.T) {
	report := sampleReport()
	report.ExtraFields = nil

	_, err := Classify(report)
	assert.Error(t, err)
}

func TestSplitTaxID(t *testing.T) {
	base, digit, err := SplitTaxID("77.235.100-6")
	require.NoError(t, err)
	assert.Equal(t, "77235100", base)
	assert.Equal(t, "6", digit)
}

func TestHeaderGlosa(t *testing.T) {
	report := sampleReport()

	glosa, err := HeaderGlosa(report)
	require.NoError(t, err)
	assert.Equal(t, "RENDICIÓN N° 112 ANA MORALES", glosa)
}

func TestHeaderGlosa_Truncated(t *testing.T) {
	report := sampleReport()
	report.EmployeeName = strings.Repeat("X", 100)

	glosa, err := HeaderGlosa(report)
	require.NoError(t, err)
	assert.LessOrEqual(t, len([]rune(glosa)), models.MaxHeaderGlosaLen)
}
