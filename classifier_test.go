package tenk

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		wantSection SectionType
		wantTable   TableName
	}{
		{
			name:        "balance sheet",
			text:        "CONSOLIDATED BALANCE SHEETS\n| Assets | 2023 | 2022 |",
			wantSection: SectionFinancialStatement,
			wantTable:   TableBalanceSheet,
		},
		{
			name:        "statements of operations",
			text:        "Consolidated Statements of Operations for the years ended",
			wantSection: SectionFinancialStatement,
			wantTable:   TableIncomeStatement,
		},
		{
			name:        "income statement",
			text:        "The income statement shows revenue growth",
			wantSection: SectionFinancialStatement,
			wantTable:   TableIncomeStatement,
		},
		{
			name:        "cash flows",
			text:        "CONSOLIDATED STATEMENTS OF CASH FLOWS",
			wantSection: SectionFinancialStatement,
			wantTable:   TableCashFlow,
		},
		{
			name:        "risk factors",
			text:        "Item 1A. Risk Factors. Investing in our stock involves risk.",
			wantSection: SectionRiskAnalysis,
			wantTable:   "",
		},
		{
			name:        "general prose",
			text:        "The Company was incorporated in Delaware in 1998.",
			wantSection: SectionGeneralText,
			wantTable:   "",
		},
		{
			name:        "statement markers win over risk marker",
			text:        "Our balance sheets reflect the risk factors described above.",
			wantSection: SectionFinancialStatement,
			wantTable:   TableBalanceSheet,
		},
		{
			name:        "singular balance sheet is not a marker",
			text:        "the balance sheet shows",
			wantSection: SectionGeneralText,
			wantTable:   "",
		},
		{
			name:        "income statement beats singular balance sheet mention",
			text:        "the income statement and the balance sheet",
			wantSection: SectionFinancialStatement,
			wantTable:   TableIncomeStatement,
		},
		{
			name:        "singular cash flow does not override risk factors",
			text:        "Risk Factors: volatility may reduce our cash flow",
			wantSection: SectionRiskAnalysis,
			wantTable:   "",
		},
		{
			name:        "empty text",
			text:        "",
			wantSection: SectionGeneralText,
			wantTable:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			section, table := Classify(tt.text)
			if section != tt.wantSection {
				t.Errorf("section = %q, want %q", section, tt.wantSection)
			}
			if table != tt.wantTable {
				t.Errorf("table = %q, want %q", table, tt.wantTable)
			}
		})
	}
}

func TestClassifierRuleList(t *testing.T) {
	// The marker list is a fixed contract with ingested corpora; a changed
	// or reordered marker silently relabels every future ingest.
	want := []classifierRule{
		{"balance sheets", SectionFinancialStatement, TableBalanceSheet},
		{"statements of operations", SectionFinancialStatement, TableIncomeStatement},
		{"income statement", SectionFinancialStatement, TableIncomeStatement},
		{"cash flows", SectionFinancialStatement, TableCashFlow},
		{"risk factors", SectionRiskAnalysis, ""},
	}
	if len(classifierRules) != len(want) {
		t.Fatalf("rules = %d, want %d", len(classifierRules), len(want))
	}
	for i, w := range want {
		if classifierRules[i] != w {
			t.Errorf("rule %d = %+v, want %+v", i, classifierRules[i], w)
		}
	}
}

func TestClassifyDeterministic(t *testing.T) {
	text := "Consolidated Statements of Cash Flows and Risk Factors"
	s1, t1 := Classify(text)
	for i := 0; i < 50; i++ {
		s2, t2 := Classify(text)
		if s2 != s1 || t2 != t1 {
			t.Fatalf("run %d: got (%q, %q), want (%q, %q)", i, s2, t2, s1, t1)
		}
	}
}
