package partos

import (
	"strconv"
	"strings"
)

// Normalizadores de campo: funciones puras y totales sobre los valores crudos
// de la planilla. Nunca devuelven error; un valor irreconocible produce nil
// (campos nulos) o 0 (flags).

// CleanString trims the raw value and returns nil for empty input or the
// literal placeholders "NA"/"na" (case-sensitive tokens: "Na" is kept).
func CleanString(raw string) *string {
	s := strings.TrimSpace(raw)
	if s == "" || s == "NA" || s == "na" {
		return nil
	}
	return &s
}

// CleanInt parses the leading integer portion of the value, truncating any
// decimal tail ("12.7" -> 12, "12abc" -> 12). Returns nil when no leading
// digits are present.
func CleanInt(raw string) *int {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}

	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return nil
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return nil
	}
	return &n
}

// CleanFloat parses the leading numeric portion of the value as a float.
// Returns nil when no leading digits are present.
func CleanFloat(raw string) *float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}

	start := 0
	if start < len(s) && (s[start] == '+' || s[start] == '-') {
		start++
	}
	end := start
	dot := false
	for end < len(s) {
		c := s[end]
		if c >= '0' && c <= '9' {
			end++
			continue
		}
		if c == '.' && !dot {
			dot = true
			end++
			continue
		}
		break
	}
	if end == start || (dot && end == start+1) {
		return nil
	}

	f, err := strconv.ParseFloat(strings.TrimSuffix(s[:end], "."), 64)
	if err != nil {
		return nil
	}
	return &f
}

// NormalizeRUT strips dots and dashes from a RUT and uppercases it (the
// verification digit can be "k"). Returns nil for blank input.
func NormalizeRUT(raw string) *string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ToUpper(s)
	return &s
}

// afirmativos is the closed vocabulary that maps to 1 for the ~27 flag fields
// of the record. Everything else, including blank and genuinely invalid data,
// maps to 0.
var afirmativos = map[string]bool{
	"SI": true, "SÍ": true, "1": true, "TRUE": true,
}

// NormalizeFlag coerces an affirmative token to 1 and anything else to 0.
func NormalizeFlag(raw string) int {
	if afirmativos[strings.ToUpper(strings.TrimSpace(raw))] {
		return 1
	}
	return 0
}

// NormalizeLabResult coerces a lab result (Chagas, VIH, hepatitis B) to 0/1.
// The affirmative vocabulary differs from the general flags: "POSITIVO" also
// counts.
func NormalizeLabResult(raw string) int {
	v := strings.ToUpper(strings.TrimSpace(raw))
	if v == "POSITIVO" || afirmativos[v] {
		return 1
	}
	return 0
}

// NormalizeVIHParto coerces the intrapartum HIV test to 0/1. "TOMADO" and
// "POSITIVO" both count as 1, so the raw value must be kept alongside the
// flag to keep them distinguishable downstream.
func NormalizeVIHParto(raw string) (flag int, original string) {
	v := strings.ToUpper(strings.TrimSpace(raw))
	if v == "TOMADO" || v == "POSITIVO" || afirmativos[v] {
		return 1, raw
	}
	return 0, raw
}

// Skin-to-skin contact codes.
const (
	ApegoNinguno = 0
	ApegoMadre   = 1
	ApegoPadre   = 2
	ApegoOtra    = 3
)

// ContactoPielAPiel holds the coded skin-to-skin contact value together with
// its two boolean projections and the pre-normalization raw text. The three
// derived forms are built once here so they cannot drift apart.
type ContactoPielAPiel struct {
	Codigo              int    `json:"codigo"`
	ConMadre            int    `json:"conMadre"`
	ConPadreAcompanante int    `json:"conPadreAcompanante"`
	Raw                 string `json:"raw"`
}

// NormalizeContactoPielAPiel maps the free-ish source vocabulary onto the
// coded representation: MADRE/SI -> 1, anything mentioning PADRE -> 2,
// "OTRA PERSONA SIGNIFICATIVA" (or anything mentioning OTRA) -> 3, else 0.
func NormalizeContactoPielAPiel(raw string) ContactoPielAPiel {
	v := strings.ToUpper(strings.TrimSpace(raw))
	switch {
	case v == "MADRE" || v == "SI" || v == "SÍ":
		return ContactoPielAPiel{Codigo: ApegoMadre, ConMadre: 1, Raw: raw}
	case strings.Contains(v, "PADRE"):
		return ContactoPielAPiel{Codigo: ApegoPadre, ConPadreAcompanante: 1, Raw: raw}
	case v == "OTRA PERSONA SIGNIFICATIVA" || strings.Contains(v, "OTRA"):
		return ContactoPielAPiel{Codigo: ApegoOtra, ConPadreAcompanante: 1, Raw: raw}
	default:
		return ContactoPielAPiel{Codigo: ApegoNinguno, Raw: raw}
	}
}
