// ABOUTME: Test scenario data structures for RAGAS benchmarks
// ABOUTME: Scenarios come from YAML files or the built-in Manaus tax-law set

package ragas

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// TestScenario is one question with its ground truth
type TestScenario struct {
	ID          string      `yaml:"id" json:"id"`
	Name        string      `yaml:"name" json:"name"`
	Description string      `yaml:"description,omitempty" json:"description,omitempty"`
	Query       string      `yaml:"query" json:"query"`
	GroundTruth GroundTruth `yaml:"ground_truth" json:"ground_truth"`
}

// GroundTruth defines expected outcomes for RAGAS evaluation
type GroundTruth struct {
	ExpectedInResponse  []string `yaml:"expected_in_response" json:"expected_in_response"`   // MUST appear in the answer
	ForbiddenInResponse []string `yaml:"forbidden_in_response" json:"forbidden_in_response"` // MUST NOT appear in the answer

	// Snippets that should be found in the retrieved chunks
	ExpectedContextItems []string `yaml:"expected_context" json:"expected_context"`
}

// scenarioFile is the YAML layout: a top-level "scenarios" list
type scenarioFile struct {
	Scenarios []TestScenario `yaml:"scenarios"`
}

// LoadScenarios reads scenarios from a YAML file
func LoadScenarios(path string) ([]TestScenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenarios: %w", err)
	}
	return ParseScenarios(data)
}

// ParseScenarios decodes and validates YAML scenario data
func ParseScenarios(data []byte) ([]TestScenario, error) {
	var f scenarioFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing scenarios: %w", err)
	}
	if len(f.Scenarios) == 0 {
		return nil, fmt.Errorf("no scenarios defined")
	}

	seen := make(map[string]bool, len(f.Scenarios))
	for i, s := range f.Scenarios {
		if strings.TrimSpace(s.ID) == "" {
			return nil, fmt.Errorf("scenario %d: id is required", i)
		}
		if seen[s.ID] {
			return nil, fmt.Errorf("scenario %s: duplicate id", s.ID)
		}
		seen[s.ID] = true
		if strings.TrimSpace(s.Query) == "" {
			return nil, fmt.Errorf("scenario %s: query is required", s.ID)
		}
		if s.Name == "" {
			f.Scenarios[i].Name = s.ID
		}
	}
	return f.Scenarios, nil
}

// FindScenario returns the scenario with id
func FindScenario(scenarios []TestScenario, id string) (TestScenario, bool) {
	for _, s := range scenarios {
		if strings.EqualFold(s.ID, id) {
			return s, true
		}
	}
	return TestScenario{}, false
}

// GetAllTests returns the built-in scenarios over the Manaus tax code
func GetAllTests() []TestScenario {
	return []TestScenario{
		GetTestISSRate(),
		GetTestIPTUTaxpayer(),
		GetTestOutOfScope(),
	}
}

// GetTestISSRate asks for the service tax rate ceiling
func GetTestISSRate() TestScenario {
	return TestScenario{
		ID:          "iss-aliquota",
		Name:        "ISS rate",
		Description: "The answer must state the ISS rate from the service tax law",
		Query:       "Qual é a alíquota máxima do ISS em Manaus?",
		GroundTruth: GroundTruth{
			ExpectedInResponse:   []string{"ISS", "%"},
			ExpectedContextItems: []string{"alíquota", "Imposto Sobre Serviços"},
		},
	}
}

// GetTestIPTUTaxpayer asks who owes the urban property tax
func GetTestIPTUTaxpayer() TestScenario {
	return TestScenario{
		ID:          "iptu-contribuinte",
		Name:        "IPTU taxpayer",
		Description: "The answer must name the owner as the IPTU taxpayer",
		Query:       "Quem é o contribuinte do IPTU?",
		GroundTruth: GroundTruth{
			ExpectedInResponse:   []string{"proprietário"},
			ExpectedContextItems: []string{"contribuinte", "IPTU"},
		},
	}
}

// GetTestOutOfScope asks something the legislation does not cover
func GetTestOutOfScope() TestScenario {
	return TestScenario{
		ID:          "fora-do-escopo",
		Name:        "Out of scope",
		Description: "The model must not invent a federal income tax rate",
		Query:       "Qual a alíquota do imposto de renda de pessoa física?",
		GroundTruth: GroundTruth{
			ForbiddenInResponse: []string{"27,5%"},
		},
	}
}
