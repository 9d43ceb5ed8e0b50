package scoring

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Canonical answer labels, as shown on the assessment form.
const (
	AnswerYes = "Sim"
	AnswerNo  = "Não"

	ChoiceFamily      = "Com família"
	ChoiceInstitution = "Instituição"
	ChoiceAlone       = "Sozinho"
)

// ItemsPerDomain is the number of binary sub-items of a questionnaire domain.
const ItemsPerDomain = 3

// Answers holds the raw answers for a single domain. Which field is read
// depends on the domain's InputKind.
type Answers struct {
	Items  []string `json:"items,omitempty" yaml:"items,omitempty"`
	Count  *int     `json:"count,omitempty" yaml:"count,omitempty"`
	Choice string   `json:"choice,omitempty" yaml:"choice,omitempty"`
}

// Assessment is the full set of raw answers for one patient. Patient and
// Institution only decorate reports and are never scored.
type Assessment struct {
	Patient     string `json:"patient,omitempty" yaml:"patient,omitempty" validate:"max=200"`
	Institution string `json:"institution,omitempty" yaml:"institution,omitempty" validate:"max=200"`

	ADL         []string `json:"adl" yaml:"adl"`
	IADL        []string `json:"iadl" yaml:"iadl"`
	Mobility    []string `json:"mobility" yaml:"mobility"`
	Cognitive   []string `json:"cognitive" yaml:"cognitive"`
	Nutritional []string `json:"nutritional" yaml:"nutritional"`

	Comorbidity  *int   `json:"comorbidity" yaml:"comorbidity"`
	Drugs        *int   `json:"drugs" yaml:"drugs"`
	Cohabitation string `json:"cohabitation" yaml:"cohabitation"`
}

// Answers returns the raw answers the assessment holds for d.
func (a Assessment) Answers(d Domain) Answers {
	switch d {
	case DomainADL:
		return Answers{Items: a.ADL}
	case DomainIADL:
		return Answers{Items: a.IADL}
	case DomainMobility:
		return Answers{Items: a.Mobility}
	case DomainCognitive:
		return Answers{Items: a.Cognitive}
	case DomainNutritional:
		return Answers{Items: a.Nutritional}
	case DomainComorbidity:
		return Answers{Count: a.Comorbidity}
	case DomainDrugs:
		return Answers{Count: a.Drugs}
	case DomainCohabitation:
		return Answers{Choice: a.Cohabitation}
	}
	return Answers{}
}

type rule struct {
	title string
	input InputKind
	items []string
	// positive is the binary answer that is counted.
	positive bool
	band     func(n int) float64
}

var rules = map[Domain]rule{
	DomainADL: {
		title:    "Atividades básicas de vida diária (ADL)",
		input:    InputBinary,
		items:    []string{"Comer sozinho?", "Vestir-se sozinho?", "Controle de urina/fezes?"},
		positive: true,
		band:     allIndependent,
	},
	DomainIADL: {
		title:    "Atividades instrumentais (IADL)",
		input:    InputBinary,
		items:    []string{"Usa telefone sozinho?", "Responsável pela medicação?", "Faz compras sozinho?"},
		positive: true,
		band:     allIndependent,
	},
	DomainMobility: {
		title:    "Mobilidade",
		input:    InputBinary,
		items:    []string{"Levantar-se sozinho?", "Andar 3 metros?", "Subir/descer escadas?"},
		positive: true,
		band:     mostlyIndependent,
	},
	DomainCognitive: {
		title:    "Cognição",
		input:    InputBinary,
		items:    []string{"Sabe a data?", "Sabe a idade correta?", "Conta de 20 para trás de 3 em 3?"},
		positive: false,
		band:     impairmentCount,
	},
	DomainNutritional: {
		title:    "Estado nutricional",
		input:    InputBinary,
		items:    []string{"Perda de peso 3 meses?", "IMC < 21?", "Ingestão alimentar diminuída?"},
		positive: true,
		band:     impairmentCount,
	},
	DomainComorbidity: {
		title: "Comorbidades",
		input: InputCount,
		items: []string{"Nº de doenças crônicas"},
		band:  comorbidityBand,
	},
	DomainDrugs: {
		title: "Medicamentos",
		input: InputCount,
		items: []string{"Nº de fármacos (princípios ativos)"},
		band:  drugsBand,
	},
	DomainCohabitation: {
		title: "Co-habitação",
		input: InputChoice,
		items: []string{"Vive com"},
	},
}

// allIndependent scores ADL and IADL: only full independence is 0.
func allIndependent(independent int) float64 {
	switch {
	case independent >= 3:
		return ValueNone
	case independent >= 1:
		return ValuePartial
	}
	return ValueSevere
}

// mostlyIndependent scores Mobility: two independent answers are enough for 0.
func mostlyIndependent(independent int) float64 {
	switch {
	case independent >= 2:
		return ValueNone
	case independent == 1:
		return ValuePartial
	}
	return ValueSevere
}

func impairmentCount(impaired int) float64 {
	switch {
	case impaired == 0:
		return ValueNone
	case impaired == 1:
		return ValuePartial
	}
	return ValueSevere
}

func comorbidityBand(conditions int) float64 {
	switch {
	case conditions == 0:
		return ValueNone
	case conditions <= 2:
		return ValuePartial
	}
	return ValueSevere
}

func drugsBand(substances int) float64 {
	switch {
	case substances <= 3:
		return ValueNone
	case substances <= 6:
		return ValuePartial
	}
	return ValueSevere
}

// fold normalizes a free-text answer for comparison.
func fold(s string) string {
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(s)))
}

var binaryAnswers = map[string]bool{
	fold(AnswerYes): true,
	fold("yes"):     true,
	fold(AnswerNo):  false,
	fold("Nao"):     false,
	fold("no"):      false,
}

var cohabitationChoices = map[string]float64{
	fold(ChoiceFamily):      ValueNone,
	fold("Com familia"):     ValueNone,
	fold("with family"):     ValueNone,
	fold("family"):          ValueNone,
	fold(ChoiceInstitution): ValuePartial,
	fold("Instituicao"):     ValuePartial,
	fold("institution"):     ValuePartial,
	fold(ChoiceAlone):       ValueSevere,
	fold("alone"):           ValueSevere,
}

// ParseBinary interprets a yes/no answer in either Portuguese or English.
func ParseBinary(answer string) (bool, bool) {
	v, ok := binaryAnswers[fold(answer)]
	return v, ok
}

// EncodeDomain maps the raw answers of one domain to its coded value.
func EncodeDomain(d Domain, a Answers) (float64, error) {
	r, ok := rules[d]
	if !ok {
		return 0, invalid(Issue{Domain: d, Reason: "unknown domain"})
	}

	switch r.input {
	case InputBinary:
		return encodeBinary(d, r, a.Items)
	case InputCount:
		return encodeCount(d, r, a.Count)
	default:
		return encodeCohabitation(d, a.Choice)
	}
}

func encodeBinary(d Domain, r rule, items []string) (float64, error) {
	if len(items) != ItemsPerDomain {
		return 0, invalid(Issue{
			Domain: d,
			Reason: fmt.Sprintf("expected %d answers, got %d", ItemsPerDomain, len(items)),
		})
	}

	var issues []Issue
	matched := 0
	for i, raw := range items {
		v, ok := ParseBinary(raw)
		if !ok {
			issues = append(issues, Issue{
				Domain: d,
				Item:   i + 1,
				Reason: fmt.Sprintf("answer %q is neither %q nor %q", raw, AnswerYes, AnswerNo),
			})
			continue
		}
		if v == r.positive {
			matched++
		}
	}
	if len(issues) > 0 {
		return 0, invalid(issues...)
	}
	return r.band(matched), nil
}

func encodeCount(d Domain, r rule, count *int) (float64, error) {
	if count == nil {
		return 0, invalid(Issue{Domain: d, Reason: "count is required"})
	}
	if *count < 0 {
		return 0, invalid(Issue{Domain: d, Reason: fmt.Sprintf("count must not be negative, got %d", *count)})
	}
	return r.band(*count), nil
}

func encodeCohabitation(d Domain, choice string) (float64, error) {
	if strings.TrimSpace(choice) == "" {
		return 0, invalid(Issue{Domain: d, Reason: "choice is required"})
	}
	v, ok := cohabitationChoices[fold(choice)]
	if !ok {
		return 0, invalid(Issue{
			Domain: d,
			Reason: fmt.Sprintf("choice %q is not one of %q, %q, %q", choice, ChoiceFamily, ChoiceInstitution, ChoiceAlone),
		})
	}
	return v, nil
}

// EncodeAssessment encodes all eight domains. Every failing domain is
// reported in the returned ValidationError.
func EncodeAssessment(a Assessment) (ScoreMap, error) {
	scores := make(ScoreMap, DomainCount)
	var issues []Issue
	for _, d := range Domains {
		v, err := EncodeDomain(d, a.Answers(d))
		if err != nil {
			issues = append(issues, IssuesOf(err)...)
			continue
		}
		scores[d] = v
	}
	if len(issues) > 0 {
		return nil, invalid(issues...)
	}
	return scores, nil
}
