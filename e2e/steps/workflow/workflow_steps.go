package workflow

import (
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext is the slice of the main test context the workflow steps use.
type TestContext interface {
	ActAs(role string)
	POST(path string, body any) error
	GetResponseField(field string) (any, error)
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
	UserID(role string) string
	Save(name, value string)
	Expand(s string) string
}

// RegisterSteps registers the registration workflow steps.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &workflowSteps{tc: tc}

	ctx.Step(`^an applicant has submitted a (SOCIETY|COOPERATIVE) application named "([^"]*)"$`, steps.submitted)
	ctx.Step(`^the application has been security cleared$`, steps.securityCleared)
	ctx.Step(`^the application has been rejected$`, steps.rejected)
	ctx.Step(`^I complete intake for the application$`, steps.completeIntake)
	ctx.Step(`^I assign the application to the (intelligence|legal) track$`, steps.assign)
	ctx.Step(`^I record security clearance "(true|false)"$`, steps.clearance)
	ctx.Step(`^I approve the application$`, steps.approve)
	ctx.Step(`^I reject the application because "([^"]*)"$`, steps.reject)
	ctx.Step(`^I appeal with notes "([^"]*)"$`, steps.appeal)
	ctx.Step(`^I decide the appeal with "(APPROVE|REJECT)"$`, steps.decideAppeal)
	ctx.Step(`^I issue the certificate$`, steps.issueCertificate)
}

type workflowSteps struct {
	tc TestContext
}

func (s *workflowSteps) appID() string {
	return s.tc.Expand("{application_id}")
}

// must runs a setup request and fails the step unless it returned 200 or 201.
func (s *workflowSteps) must(err error) error {
	if err != nil {
		return err
	}
	if code := s.tc.GetLastResponseStatus(); code != 200 && code != 201 {
		return fmt.Errorf("setup request failed with %d: %s", code, s.tc.GetLastResponseBody())
	}
	return nil
}

func (s *workflowSteps) submitted(appType, name string) error {
	s.tc.ActAs("applicant")
	err := s.must(s.tc.POST("/v1/applications", map[string]any{
		"applicationType": appType,
		"proposedName":    name,
		"primaryContact":  map[string]string{"name": "Asha", "email": "asha@example.com", "phone": "+255 700 111 222"},
		"physicalAddress": "Plot 12, Mwanza",
	}))
	if err != nil {
		return err
	}
	v, err := s.tc.GetResponseField("id")
	if err != nil {
		return err
	}
	s.tc.Save("application_id", fmt.Sprint(v))
	return nil
}

func (s *workflowSteps) securityCleared() error {
	s.tc.ActAs("government_officer")
	if err := s.must(s.completeIntake()); err != nil {
		return err
	}
	if err := s.must(s.assign("intelligence")); err != nil {
		return err
	}
	s.tc.ActAs("intelligence_liaison")
	return s.must(s.clearance("true"))
}

func (s *workflowSteps) rejected() error {
	if err := s.securityCleared(); err != nil {
		return err
	}
	s.tc.ActAs("registrar")
	return s.must(s.reject("name already registered"))
}

func (s *workflowSteps) completeIntake() error {
	return s.tc.POST("/v1/applications/completeness-check", map[string]any{"applicationId": s.appID()})
}

func (s *workflowSteps) assign(track string) error {
	return s.tc.POST("/v1/applications/assign", map[string]any{
		"applicationId": s.appID(),
		"officerId":     s.tc.UserID("government_officer"),
		"role":          track,
	})
}

func (s *workflowSteps) clearance(cleared string) error {
	return s.tc.POST("/v1/applications/security-clearance", map[string]any{
		"applicationId": s.appID(),
		"isCleared":     cleared == "true",
		"riskLevel":     "LOW",
	})
}

func (s *workflowSteps) approve() error {
	return s.tc.POST("/v1/applications/approve", map[string]any{"applicationId": s.appID()})
}

func (s *workflowSteps) reject(reason string) error {
	return s.tc.POST("/v1/applications/reject", map[string]any{"applicationId": s.appID(), "reason": reason})
}

func (s *workflowSteps) appeal(notes string) error {
	return s.tc.POST("/v1/appeals/submit", map[string]any{"applicationId": s.appID(), "notes": notes})
}

func (s *workflowSteps) decideAppeal(decision string) error {
	return s.tc.POST("/v1/appeals", map[string]any{"applicationId": s.appID(), "decision": decision, "notes": "decided"})
}

func (s *workflowSteps) issueCertificate() error {
	return s.tc.POST("/v1/certificates/issue", map[string]any{"applicationId": s.appID()})
}
