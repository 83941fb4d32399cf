package obligation

import (
	"testing"

	"veritas-hq/minerva/pkg/signal"
)

func sig(sigType string) signal.Signal {
	return signal.Signal{Type: sigType, Source: signal.SourceRegex, Confidence: 0.9}
}

func byArticle(obligations []Obligation) map[string]Obligation {
	m := make(map[string]Obligation, len(obligations))
	for _, o := range obligations {
		m[o.ArticleID] = o
	}
	return m
}

func TestMapObligationsBaselines(t *testing.T) {
	tests := []struct {
		name      string
		riskClass RiskClass
		wantCount int
		wantFirst string
	}{
		{"high risk baseline", RiskHigh, 6, ArticleRiskManagement},
		{"limited risk baseline", RiskLimited, 1, ArticleTransparency},
		{"unacceptable baseline", RiskUnacceptable, 1, ArticleProhibition},
		{"minimal baseline", RiskMinimal, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obligations := MapObligations(nil, tt.riskClass)
			if len(obligations) != tt.wantCount {
				t.Fatalf("got %d obligations, want %d", len(obligations), tt.wantCount)
			}
			if tt.wantCount == 0 {
				return
			}
			if obligations[0].ArticleID != tt.wantFirst {
				t.Errorf("first article = %s, want %s", obligations[0].ArticleID, tt.wantFirst)
			}
			for _, o := range obligations {
				if o.ComplianceStatus != StatusCompliant {
					t.Errorf("baseline %s status = %s, want COMPLIANT", o.ArticleID, o.ComplianceStatus)
				}
				if o.ArticleName == "" || o.Requirement == "" {
					t.Errorf("article %s metadata not resolved", o.ArticleID)
				}
			}
		})
	}
}

func TestMapObligationsSignalMarksBaselinePartial(t *testing.T) {
	obligations := MapObligations([]signal.Signal{sig(signal.TypeSuicideRisk)}, RiskHigh)
	m := byArticle(obligations)

	oversight, ok := m[ArticleHumanOversight]
	if !ok {
		t.Fatal("expected human-oversight obligation")
	}
	if oversight.ComplianceStatus != StatusPartial {
		t.Errorf("oversight status = %s, want PARTIAL", oversight.ComplianceStatus)
	}

	// Articles no signal touched stay COMPLIANT.
	if m[ArticleRiskManagement].ComplianceStatus != StatusCompliant {
		t.Errorf("untouched baseline status = %s, want COMPLIANT", m[ArticleRiskManagement].ComplianceStatus)
	}
}

func TestMapObligationsSignalAddsNonCompliant(t *testing.T) {
	// LIMITED baseline is transparency only; a dosage signal adds the
	// serious-incident article as a direct gap.
	obligations := MapObligations([]signal.Signal{sig(signal.TypeDosageRecommendation)}, RiskLimited)
	m := byArticle(obligations)

	if len(obligations) != 2 {
		t.Fatalf("got %d obligations, want 2", len(obligations))
	}
	incident, ok := m[ArticleSeriousIncidents]
	if !ok {
		t.Fatal("expected serious-incidents obligation")
	}
	if incident.ComplianceStatus != StatusNonCompliant {
		t.Errorf("signal-added status = %s, want NON_COMPLIANT", incident.ComplianceStatus)
	}
	if m[ArticleTransparency].ComplianceStatus != StatusCompliant {
		t.Errorf("transparency status = %s, want COMPLIANT", m[ArticleTransparency].ComplianceStatus)
	}
}

func TestMapObligationsDeduplicatesArticles(t *testing.T) {
	// Three crisis-adjacent signals all trigger human oversight; the
	// article appears once.
	obligations := MapObligations([]signal.Signal{
		sig(signal.TypeSuicideRisk),
		sig(signal.TypeMissingEscalation),
		sig(signal.TypeLLMCrisis),
	}, RiskMinimal)

	if len(obligations) != 1 {
		t.Fatalf("got %d obligations, want 1", len(obligations))
	}
	o := obligations[0]
	if o.ArticleID != ArticleHumanOversight || o.ComplianceStatus != StatusNonCompliant {
		t.Errorf("unexpected obligation: %+v", o)
	}
}

func TestLookupArticle(t *testing.T) {
	a, ok := LookupArticle(ArticleRecordKeeping)
	if !ok || a.ID != ArticleRecordKeeping || a.Name == "" {
		t.Errorf("LookupArticle(%s) = %+v, %t", ArticleRecordKeeping, a, ok)
	}
	if _, ok := LookupArticle("EU-AI-ACT-ART-999"); ok {
		t.Error("unknown article should not resolve")
	}
}
