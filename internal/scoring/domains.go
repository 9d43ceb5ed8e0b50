package scoring

import (
	"fmt"
	"strings"
)

// Domain is one of the eight fixed Brief-MPI assessment domains.
type Domain string

const (
	DomainADL          Domain = "ADL"
	DomainIADL         Domain = "IADL"
	DomainMobility     Domain = "Mobility"
	DomainCognitive    Domain = "Cognitive"
	DomainNutritional  Domain = "Nutritional"
	DomainComorbidity  Domain = "Comorbidity"
	DomainDrugs        Domain = "Drugs"
	DomainCohabitation Domain = "Cohabitation"
)

// Domains lists the domains in canonical order. Export columns follow this order.
var Domains = []Domain{
	DomainADL,
	DomainIADL,
	DomainMobility,
	DomainCognitive,
	DomainNutritional,
	DomainComorbidity,
	DomainDrugs,
	DomainCohabitation,
}

// DomainCount is the number of domains every score map must carry.
const DomainCount = 8

// Coded domain values. 0 is the best outcome, 1 the most impaired.
const (
	ValueNone    = 0.0
	ValuePartial = 0.5
	ValueSevere  = 1.0
)

// IsCoded reports whether v is one of the three coded domain values.
func IsCoded(v float64) bool {
	return v == ValueNone || v == ValuePartial || v == ValueSevere
}

// ParseDomain resolves a domain name case-insensitively.
func ParseDomain(name string) (Domain, error) {
	name = strings.TrimSpace(name)
	for _, d := range Domains {
		if strings.EqualFold(string(d), name) {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown domain %q", name)
}

// InputKind describes the shape of the raw answers a domain expects.
type InputKind string

const (
	InputBinary InputKind = "binary"
	InputCount  InputKind = "count"
	InputChoice InputKind = "choice"
)

// DomainInfo describes a domain's questionnaire for presentation layers.
type DomainInfo struct {
	Domain   Domain    `json:"domain"`
	Title    string    `json:"title"`
	Input    InputKind `json:"input"`
	Items    []string  `json:"items,omitempty"`
	Choices  []string  `json:"choices,omitempty"`
	Positive string    `json:"positive,omitempty"`
}

// Catalog returns the questionnaire definition of every domain in canonical order.
func Catalog() []DomainInfo {
	out := make([]DomainInfo, 0, len(Domains))
	for _, d := range Domains {
		r := rules[d]
		info := DomainInfo{
			Domain: d,
			Title:  r.title,
			Input:  r.input,
			Items:  append([]string(nil), r.items...),
		}
		switch r.input {
		case InputBinary:
			if r.positive {
				info.Positive = AnswerYes
			} else {
				info.Positive = AnswerNo
			}
		case InputChoice:
			info.Choices = []string{ChoiceFamily, ChoiceInstitution, ChoiceAlone}
		}
		out = append(out, info)
	}
	return out
}
