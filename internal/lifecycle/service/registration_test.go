package service

import (
	"fmt"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"golang.org/x/crypto/bcrypt"

	"caregate/internal/lifecycle/models"
	id "caregate/pkg/domain"
	dErrors "caregate/pkg/domain-errors"
	"caregate/pkg/platform/audit"
)

func (s *ServiceSuite) fullRequest(email, phone string, licenses ...string) RegisterCandidateRequest {
	return RegisterCandidateRequest{
		Name:           "Dr. Grace",
		Email:          email,
		Phone:          phone,
		Password:       "correct horse",
		Licenses:       licenses,
		Specialization: "cardiology",
	}
}

func (s *ServiceSuite) register(req RegisterCandidateRequest) *models.Candidate {
	out, err := s.svc.RegisterCandidate(s.ctx, req)
	s.Require().NoError(err)
	s.Require().NotNil(out.Candidate)
	return out.Candidate
}

func (s *ServiceSuite) TestRegisterCandidate() {
	out, err := s.svc.RegisterCandidate(s.ctx, s.fullRequest("  Grace@Clinic.TEST ", "+200", "LIC-7", "LIC-7 "))
	s.Require().NoError(err)

	c := out.Candidate
	s.Equal("grace@clinic.test", c.Credentials.Email)
	s.Equal([]string{"LIC-7"}, c.Credentials.Licenses)
	s.Equal(s.now, c.SubmittedAt)
	s.NoError(bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte("correct horse")))
	s.Equal([]models.Effect{models.EffectCandidateCreated}, out.Effects)
	s.Equal([]audit.EventType{audit.EventCandidateRegistered}, out.Events)

	stored, err := s.dir.FindCandidateByID(s.ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(c.Credentials, stored.Credentials)
}

func (s *ServiceSuite) TestRegisterRequiresEmail() {
	_, err := s.svc.RegisterCandidate(s.ctx, RegisterCandidateRequest{Name: "Dr. Grace", Phone: "+200"})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	s.Empty(s.sink.Events())
}

func (s *ServiceSuite) TestRegisterOnlyEmailIsEnough() {
	out, err := s.svc.RegisterCandidate(s.ctx, RegisterCandidateRequest{Email: "minimal@clinic.test"})
	s.Require().NoError(err)
	s.Empty(out.Candidate.PasswordHash)
}

func (s *ServiceSuite) TestRegisterBlockedByBlacklistOnAnyField() {
	_, err := s.svc.AddBlacklistEntry(s.ctx, AddBlacklistEntryRequest{
		Email:    "banned@clinic.test",
		Phone:    "+999",
		Licenses: []string{"LIC-A", "LIC-B"},
		Note:     "fraud",
	})
	s.Require().NoError(err)
	s.sink.Reset()

	cases := []struct {
		name    string
		req     RegisterCandidateRequest
		field   string
		license string
	}{
		{"email", s.fullRequest("BANNED@clinic.test", "+1"), models.FieldEmail, ""},
		{"phone", s.fullRequest("other@clinic.test", "+999"), models.FieldPhone, ""},
		{"any license", s.fullRequest("third@clinic.test", "+3", "LIC-X", "LIC-B"), models.FieldLicense, "LIC-B"},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			_, err := s.svc.RegisterCandidate(s.ctx, tc.req)
			s.Require().True(dErrors.HasCode(err, dErrors.CodeBlacklisted))
			details := dErrors.DetailsOf(err)
			s.Equal(tc.field, details["field"])
			s.Equal(string(models.ReasonManual), details["blacklist_reason"])
			if tc.license != "" {
				s.Equal(tc.license, details["license"])
			}
		})
	}

	blocked := s.sink.OfType(audit.EventRegistrationBlocked)
	s.Len(blocked, 3)
	s.Equal(audit.SeverityCritical, blocked[0].Severity)
}

func (s *ServiceSuite) TestRegisterDuplicateEmailOrPhone() {
	s.activeProvider("Dr. Ada", "ada@clinic.test", "+100")
	s.register(s.fullRequest("pending@clinic.test", "+300"))

	cases := []struct {
		name       string
		req        RegisterCandidateRequest
		field      string
		entityType models.EntityType
	}{
		{"provider email", s.fullRequest("ADA@clinic.test", "+1"), models.FieldEmail, models.EntityProvider},
		{"provider phone", s.fullRequest("new@clinic.test", "+100"), models.FieldPhone, models.EntityProvider},
		{"candidate email", s.fullRequest("pending@clinic.test", "+2"), models.FieldEmail, models.EntityCandidate},
		{"candidate phone", s.fullRequest("new2@clinic.test", "+300"), models.FieldPhone, models.EntityCandidate},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			out, err := s.svc.RegisterCandidate(s.ctx, tc.req)
			s.Require().True(dErrors.HasCode(err, dErrors.CodeDuplicateCredential))
			s.Require().NotNil(out.Conflict)
			s.Equal(tc.field, out.Conflict.Field)
			s.Equal(tc.entityType, out.Conflict.EntityType)
			s.Nil(out.Candidate)
		})
	}
}

func (s *ServiceSuite) TestLicenseHeldByProviderSuspendsHolder() {
	holder := s.activeProvider("Dr. Ada", "ada@clinic.test", "+100", "LIC-1")

	out, err := s.svc.RegisterCandidate(s.ctx, s.fullRequest("impostor@clinic.test", "+666", "LIC-1"))
	s.Require().True(dErrors.HasCode(err, dErrors.CodeDuplicateCredential))

	details := dErrors.DetailsOf(err)
	s.Equal("LIC-1", details["license"])
	s.Equal("true", details["holder_suspended"])
	s.Equal(holder.ID.String(), details["entity_id"])

	s.True(out.Has(models.EffectHolderSuspended))
	s.True(out.Has(models.EffectSuspensionRecorded))
	s.Require().NotNil(out.Suspension)
	s.Equal(models.SeverityMajor, out.Suspension.Severity)
	s.Equal(models.SuspensionIndefinite, out.Suspension.Kind)
	s.Equal([]string{licenseConflictReason}, out.Suspension.Reasons)
	s.Equal([]audit.EventType{audit.EventProviderSuspended, audit.EventRegistrationBlocked}, out.Events)

	s.Equal(models.ProviderSuspended, s.stateOf(holder.ID))
	s.Equal(1, s.countFor(holder.ID))

	_, err = s.dir.FindCandidateByEmail(s.ctx, "impostor@clinic.test")
	s.Error(err, "the applicant is never admitted")
}

func (s *ServiceSuite) TestLicenseHeldByCandidateSuspendsNobody() {
	first := s.register(s.fullRequest("first@clinic.test", "+1", "LIC-1"))

	out, err := s.svc.RegisterCandidate(s.ctx, s.fullRequest("second@clinic.test", "+2", "LIC-1"))
	s.Require().True(dErrors.HasCode(err, dErrors.CodeDuplicateCredential))

	details := dErrors.DetailsOf(err)
	s.Equal("false", details["holder_suspended"])
	s.Equal(first.ID.String(), details["entity_id"])
	s.Equal(string(models.EntityCandidate), details["entity_type"])
	s.Nil(out.Suspension)
	s.False(out.Has(models.EffectHolderSuspended))
	s.Empty(s.sink.OfType(audit.EventProviderSuspended))
}

func (s *ServiceSuite) TestLicenseHeldBySuspendedProviderAddsNoSuspension() {
	holder := s.activeProvider("Dr. Ada", "ada@clinic.test", "+100", "LIC-1")
	_, err := s.svc.Suspend(s.ctx, holder.ID, s.suspendDetails("complaint"))
	s.Require().NoError(err)
	s.sink.Reset()

	out, err := s.svc.RegisterCandidate(s.ctx, s.fullRequest("impostor@clinic.test", "+666", "LIC-1"))
	s.Require().True(dErrors.HasCode(err, dErrors.CodeDuplicateCredential))

	details := dErrors.DetailsOf(err)
	s.Equal("false", details["holder_suspended"])
	s.Equal(holder.ID.String(), details["entity_id"])
	s.Nil(out.Suspension)
	s.False(out.Has(models.EffectHolderSuspended))
	s.Equal([]audit.EventType{audit.EventRegistrationBlocked}, s.sink.Types())

	s.Equal(models.ProviderSuspended, s.stateOf(holder.ID))
	s.Equal(1, s.countFor(holder.ID))
}

func (s *ServiceSuite) TestRepeatedLicenseConflictsNeverTerminateHolder() {
	holder := s.activeProvider("Dr. Ada", "ada@clinic.test", "+100", "LIC-1")

	for i := range 6 {
		req := s.fullRequest(fmt.Sprintf("impostor%d@clinic.test", i), fmt.Sprintf("+66%d", i), "LIC-1")
		out, err := s.svc.RegisterCandidate(s.ctx, req)
		s.Require().True(dErrors.HasCode(err, dErrors.CodeDuplicateCredential))
		s.False(out.Terminated)
	}

	got, err := s.svc.GetProvider(s.ctx, holder.ID)
	s.Require().NoError(err)
	s.Equal(models.ProviderSuspended, got.State)
	s.Equal(1, s.countFor(holder.ID), "only the first conflict finds the holder active")
	s.Empty(s.sink.OfType(audit.EventProviderBlacklisted))
}

func (s *ServiceSuite) TestApproveCandidate() {
	c := s.register(s.fullRequest("grace@clinic.test", "+200", "LIC-7"))
	s.sink.Reset()

	out, err := s.svc.ApproveCandidate(s.ctx, c.ID)
	s.Require().NoError(err)

	p := out.Provider
	s.Equal(models.ProviderActive, p.State)
	s.Equal(c.Credentials, p.Credentials)
	s.Equal(c.PasswordHash, p.PasswordHash)
	s.Equal([]models.Effect{models.EffectProviderCreated, models.EffectCandidateRemoved}, out.Effects)
	s.Equal([]audit.EventType{audit.EventCandidateApproved}, s.sink.Types())

	_, err = s.dir.FindCandidateByID(s.ctx, c.ID)
	s.Error(err)
	got, err := s.svc.GetProvider(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(p.ID, got.ID)
}

func (s *ServiceSuite) TestApproveUnknownCandidate() {
	_, err := s.svc.ApproveCandidate(s.ctx, id.NewCandidateID())
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestApproveValidatesRequiredFields() {
	c := s.register(RegisterCandidateRequest{Email: "minimal@clinic.test"})

	_, err := s.svc.ApproveCandidate(s.ctx, c.ID)
	s.Require().True(dErrors.HasCode(err, dErrors.CodeValidation))
	s.Equal("name,password,phone", dErrors.DetailsOf(err)["fields"])

	_, err = s.dir.FindCandidateByID(s.ctx, c.ID)
	s.NoError(err, "a failed approval keeps the candidate")
}

func (s *ServiceSuite) TestApproveRechecksProviderEmail() {
	c := s.register(s.fullRequest("grace@clinic.test", "+200"))
	s.activeProvider("Dr. Grace Twin", "grace@clinic.test", "+201")

	out, err := s.svc.ApproveCandidate(s.ctx, c.ID)
	s.Require().True(dErrors.HasCode(err, dErrors.CodeDuplicateCredential))
	s.Require().NotNil(out.Conflict)
	s.Equal(models.FieldEmail, out.Conflict.Field)
	s.Empty(out.Events)
}

func (s *ServiceSuite) TestApproveLosesRaceOnUniqueConstraint() {
	first := models.NewCandidate("Dr. One", models.NewCredentialSet("one@clinic.test", "+555", nil), "hash", "", s.now)
	second := models.NewCandidate("Dr. Two", models.NewCredentialSet("two@clinic.test", "+555", nil), "hash", "", s.now)
	s.Require().NoError(s.dir.InsertCandidate(s.ctx, first))
	s.Require().NoError(s.dir.InsertCandidate(s.ctx, second))

	_, err := s.svc.ApproveCandidate(s.ctx, first.ID)
	s.Require().NoError(err)
	_, err = s.svc.ApproveCandidate(s.ctx, second.ID)
	s.Require().True(dErrors.HasCode(err, dErrors.CodeDuplicateCredential))
	s.Equal(models.FieldPhone, dErrors.DetailsOf(err)["field"], "the phone collision is reported as such")
}

func (s *ServiceSuite) TestApproveRechecksBlacklist() {
	c := s.register(s.fullRequest("grace@clinic.test", "+200"))
	_, err := s.svc.AddBlacklistEntry(s.ctx, AddBlacklistEntryRequest{Phone: "+200", Note: "late report"})
	s.Require().NoError(err)

	_, err = s.svc.ApproveCandidate(s.ctx, c.ID)
	s.Require().True(dErrors.HasCode(err, dErrors.CodeBlacklisted))
	s.Equal(models.FieldPhone, dErrors.DetailsOf(err)["field"])
}

func (s *ServiceSuite) TestRejectCandidate() {
	c := s.register(s.fullRequest("grace@clinic.test", "+200"))

	out, err := s.svc.RejectCandidate(s.ctx, c.ID, "incomplete documents")
	s.Require().NoError(err)
	s.Equal(1, out.RejectionCount)
	s.Nil(out.BlacklistEntry)
	s.Equal([]models.Effect{models.EffectRejectionCounted, models.EffectCandidateRemoved}, out.Effects)
	s.Equal([]audit.EventType{audit.EventCandidateRejected}, out.Events)

	_, err = s.dir.FindCandidateByID(s.ctx, c.ID)
	s.Error(err)
	rejected := s.sink.OfType(audit.EventCandidateRejected)
	s.Require().Len(rejected, 1)
	s.Equal("incomplete documents", rejected[0].Reason)
}

func (s *ServiceSuite) TestThirdRejectionBlacklistsOnce() {
	for i := 1; i <= 3; i++ {
		c := s.register(s.fullRequest("Repeat@clinic.test", "+200", "LIC-R"))
		out, err := s.svc.RejectCandidate(s.ctx, c.ID, "not qualified")
		s.Require().NoError(err)
		s.Equal(i, out.RejectionCount)
		if i < 3 {
			s.Nil(out.BlacklistEntry)
			continue
		}
		s.Require().NotNil(out.BlacklistEntry)
		s.Equal(models.ReasonCandidateRejectedRepeatedly, out.BlacklistEntry.Reason)
		s.Equal([]string{"LIC-R"}, out.BlacklistEntry.Fingerprint.Licenses)
		s.Equal([]audit.EventType{audit.EventCandidateBlacklisted, audit.EventCandidateRejected}, out.Events)
	}

	_, err := s.svc.RegisterCandidate(s.ctx, s.fullRequest("repeat@clinic.test", "+201"))
	s.True(dErrors.HasCode(err, dErrors.CodeBlacklisted))

	entries, err := s.svc.ListBlacklist(s.ctx, true)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)

	_, err = s.svc.DeactivateBlacklistEntry(s.ctx, entries[0].ID, false)
	s.Require().NoError(err)
	c := s.register(s.fullRequest("repeat@clinic.test", "+202"))
	out, err := s.svc.RejectCandidate(s.ctx, c.ID, "still not qualified")
	s.Require().NoError(err)
	s.Equal(4, out.RejectionCount)
	s.Nil(out.BlacklistEntry, "only the rejection reaching the threshold blacklists")

	entries, err = s.svc.ListBlacklist(s.ctx, true)
	s.Require().NoError(err)
	s.Len(entries, 1)
}

func (s *ServiceSuite) TestRejectUnknownCandidateCountsNothing() {
	_, err := s.svc.RejectCandidate(s.ctx, id.NewCandidateID(), "x")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	s.InDelta(0, promtest.ToFloat64(s.metrics.Rejections), 0)
}

func (s *ServiceSuite) TestRejectionCount() {
	c := s.register(s.fullRequest("grace@clinic.test", "+200"))
	_, err := s.svc.RejectCandidate(s.ctx, c.ID, "incomplete documents")
	s.Require().NoError(err)

	n, err := s.svc.RejectionCount(s.ctx, " Grace@Clinic.TEST ")
	s.Require().NoError(err)
	s.Equal(1, n)

	_, err = s.svc.RejectionCount(s.ctx, "  ")
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}
