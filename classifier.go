package tenk

import "strings"

// classifierRule maps a lowercase marker phrase to a section assignment.
// Rules are evaluated in order; the first match wins, so specific financial
// statement markers take precedence over the broader risk marker.
type classifierRule struct {
	marker  string
	section SectionType
	table   TableName
}

var classifierRules = []classifierRule{
	{"balance sheets", SectionFinancialStatement, TableBalanceSheet},
	{"statements of operations", SectionFinancialStatement, TableIncomeStatement},
	{"income statement", SectionFinancialStatement, TableIncomeStatement},
	{"cash flows", SectionFinancialStatement, TableCashFlow},
	{"risk factors", SectionRiskAnalysis, ""},
}

// Classify assigns a section type and table name to a block of filing text
// by scanning for marker phrases. Classification is deterministic: the same
// text always yields the same labels. Text matching no marker is general
// prose with no table name.
func Classify(text string) (SectionType, TableName) {
	lower := strings.ToLower(text)
	for _, rule := range classifierRules {
		if strings.Contains(lower, rule.marker) {
			return rule.section, rule.table
		}
	}
	return SectionGeneralText, ""
}
