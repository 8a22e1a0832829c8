package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"civicfix/config"
	"civicfix/database"
	"civicfix/models"
	"civicfix/payments"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProcessor struct {
	mu       sync.Mutex
	sessions map[string]payments.Session
	requests []payments.CheckoutRequest
	err      error
	// retrieveErr fails RetrieveSession, as when the processor is down.
	retrieveErr error
}

func newFakeProcessor() *fakeProcessor {
	return &fakeProcessor{sessions: map[string]payments.Session{}}
}

func (f *fakeProcessor) CreateCheckout(_ context.Context, req payments.CheckoutRequest) (payments.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return payments.Session{}, f.err
	}
	f.requests = append(f.requests, req)
	s := payments.Session{
		ID:       "chrg_" + req.Reference,
		URL:      "https://pay.example/" + req.Reference,
		Status:   "pending",
		Metadata: req.Metadata,
	}
	f.sessions[s.ID] = s
	return s, nil
}

func (f *fakeProcessor) RetrieveSession(_ context.Context, id string) (payments.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.retrieveErr != nil {
		return payments.Session{}, f.retrieveErr
	}
	s, ok := f.sessions[id]
	if !ok {
		return payments.Session{}, errors.New("no such charge")
	}
	return s, nil
}

func (f *fakeProcessor) markPaid(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.sessions[id]
	s.Paid = true
	s.Status = "successful"
	f.sessions[id] = s
}

type fakeUploader struct {
	folder string
	body   string
}

func (f *fakeUploader) Upload(_ context.Context, r io.Reader, _ string, folder string) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.folder, f.body = folder, string(b)
	return "https://storage.googleapis.com/bucket/" + folder + "/img.png", nil
}

func testConfig() *config.Config {
	return &config.Config{
		FreeIssueLimit:  3,
		PremiumPrice:    100000,
		BoostPrice:      10000,
		PaymentCurrency: "thb",
		CheckoutTTL:     30 * time.Minute,
		SiteDomain:      "https://civic.example",
	}
}

func newTestService(t *testing.T) (*Service, *db.MemoryStore, *fakeProcessor) {
	t.Helper()
	st := db.NewMemoryStore()
	proc := newFakeProcessor()
	return New(st, proc, nil, testConfig()), st, proc
}

func report(t *testing.T, svc *Service, email, title string) string {
	t.Helper()
	res, err := svc.ReportIssue(context.Background(), Caller{Email: email}, models.ReportIssueRequest{
		Title:    title,
		Category: "Road",
		Location: "Dhaka",
	})
	require.NoError(t, err)
	require.True(t, res.Inserted)
	return res.InsertedID
}

func TestReportIssue_Defaults(t *testing.T) {
	svc, st, _ := newTestService(t)

	id := report(t, svc, "a@x.com", "Pothole")

	issue, err := st.GetIssue(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", issue.Email)
	assert.Equal(t, models.StatusPending, issue.Status)
	assert.Equal(t, models.PriorityNormal, issue.Priority)
	assert.Equal(t, 0, issue.Upvotes)
	assert.Empty(t, issue.UpvotedBy)
	assert.Equal(t, models.PaymentUnpaid, issue.PaymentStatus)
}

func TestReportIssue_FreeQuota(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()
	caller := Caller{Email: "a@x.com"}
	req := models.ReportIssueRequest{Title: "t", Category: "Road", Location: "Dhaka"}

	for i := 0; i < 3; i++ {
		_, err := svc.ReportIssue(ctx, caller, req)
		require.NoError(t, err, "report %d", i+1)
	}

	_, err := svc.ReportIssue(ctx, caller, req)
	require.ErrorIs(t, err, ErrForbidden)
	assert.Contains(t, err.Error(), "up to 3 issues")

	n, err := st.CountIssuesByReporter(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestReportIssue_PremiumHasNoQuota(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()

	_, err := st.InsertUser(ctx, &models.User{Email: "p@x.com", IsPremium: true})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		report(t, svc, "p@x.com", "t")
	}
}

func TestReportIssue_RejectsOtherReporter(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.ReportIssue(context.Background(), Caller{Email: "a@x.com"}, models.ReportIssueRequest{
		Title: "t", Category: "Road", Location: "Dhaka", Email: "b@x.com",
	})
	require.ErrorIs(t, err, ErrForbidden)
}

func TestUpvote(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()
	id := report(t, svc, "a@x.com", "Pothole")

	_, err := svc.Upvote(ctx, Caller{Email: "a@x.com"}, id)
	require.ErrorIs(t, err, ErrForbidden)

	res, err := svc.Upvote(ctx, Caller{Email: "b@x.com"}, id)
	require.NoError(t, err)
	assert.True(t, res.Upvoted)

	for i := 0; i < 3; i++ {
		res, err = svc.Upvote(ctx, Caller{Email: "b@x.com"}, id)
		require.NoError(t, err)
		assert.False(t, res.Upvoted)
		assert.Equal(t, "Already upvoted", res.Message)
	}

	issue, err := st.GetIssue(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, issue.Upvotes)
	assert.Equal(t, []string{"b@x.com"}, issue.UpvotedBy)
	assert.NotContains(t, issue.UpvotedBy, "a@x.com")

	_, err = svc.Upvote(ctx, Caller{Email: "b@x.com"}, "bad-id")
	require.ErrorIs(t, err, ErrInvalidID)
}

func TestUpvote_ConcurrentVotersCountOnce(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()
	id := report(t, svc, "a@x.com", "Pothole")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.Upvote(ctx, Caller{Email: "b@x.com"}, id)
		}()
	}
	wg.Wait()

	issue, err := st.GetIssue(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, issue.Upvotes)
}

func TestEditAndDeleteIssue_OwnerOnly(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()
	id := report(t, svc, "a@x.com", "Pothole")
	edit := models.IssueEdit{Title: "Deep pothole", Category: "Road", Location: "Dhaka"}

	_, err := svc.EditIssue(ctx, Caller{Email: "b@x.com"}, id, edit)
	require.ErrorIs(t, err, ErrForbidden)
	_, err = svc.DeleteIssue(ctx, Caller{Email: "b@x.com"}, id)
	require.ErrorIs(t, err, ErrForbidden)

	res, err := svc.EditIssue(ctx, Caller{Email: "a@x.com"}, id, edit)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Matched)

	issue, err := st.GetIssue(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Deep pothole", issue.Title)
	assert.False(t, issue.UpdatedAt.IsZero())

	del, err := svc.DeleteIssue(ctx, Caller{Email: "a@x.com"}, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), del.Deleted)

	_, err = svc.GetIssue(ctx, id)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMyIssues_SelfOnly(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	report(t, svc, "a@x.com", "one")
	report(t, svc, "a@x.com", "two")

	issues, err := svc.MyIssues(ctx, Caller{Email: "a@x.com"}, "a@x.com")
	require.NoError(t, err)
	assert.Len(t, issues, 2)

	count, err := svc.CountMyIssues(ctx, Caller{Email: "a@x.com"}, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count.Count)

	_, err = svc.MyIssues(ctx, Caller{Email: "b@x.com"}, "a@x.com")
	require.ErrorIs(t, err, ErrForbidden)
	_, err = svc.CountMyIssues(ctx, Caller{Email: "b@x.com"}, "a@x.com")
	require.ErrorIs(t, err, ErrForbidden)
	_, err = svc.MyIssues(ctx, Caller{}, "a@x.com")
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestUpsertUser(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()
	req := models.CreateUserRequest{Email: "a@x.com", Name: "A"}

	first, err := svc.UpsertUser(ctx, req)
	require.NoError(t, err)
	assert.True(t, first.Inserted)
	assert.NotEmpty(t, first.InsertedID)

	req.Name = "Changed"
	second, err := svc.UpsertUser(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, models.InsertResponse{Inserted: false, Message: "User already exists"}, second)

	stats, err := st.UserStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Total)

	user, err := st.FindUser(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "A", user.Name)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.False(t, user.IsPremium)
}

func TestGetUser_SelfOrAdmin(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()
	_, err := st.InsertUser(ctx, &models.User{Email: "a@x.com"})
	require.NoError(t, err)
	_, err = st.InsertUser(ctx, &models.User{Email: "admin@x.com", Role: models.RoleAdmin})
	require.NoError(t, err)

	res, err := svc.GetUser(ctx, Caller{Email: "a@x.com"}, "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, res.User)

	res, err = svc.GetUser(ctx, Caller{Email: "admin@x.com"}, "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, res.User)

	_, err = svc.GetUser(ctx, Caller{Email: "b@x.com"}, "a@x.com")
	require.ErrorIs(t, err, ErrForbidden)

	res, err = svc.GetUser(ctx, Caller{Email: "new@x.com"}, "new@x.com")
	require.NoError(t, err)
	assert.Nil(t, res.User)
}

func TestUpdateProfile_SelfOnly(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()
	_, err := st.InsertUser(ctx, &models.User{Email: "a@x.com"})
	require.NoError(t, err)
	upd := models.ProfileUpdate{Name: "New", Email: "a@x.com", Photo: "p.png"}

	_, err = svc.UpdateProfile(ctx, Caller{Email: "b@x.com"}, "a@x.com", upd)
	require.ErrorIs(t, err, ErrForbidden)

	res, err := svc.UpdateProfile(ctx, Caller{Email: "a@x.com"}, "a@x.com", upd)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Matched)

	user, err := st.FindUser(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "New", user.Name)
	assert.Equal(t, "p.png", user.Photo)
}

func TestFeedback(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res, err := svc.SubmitFeedback(ctx, models.FeedbackRequest{Name: "A", Email: "a@x.com", Rating: 5, Comment: "ok"})
		require.NoError(t, err)
		assert.True(t, res.Inserted)
	}

	_, err := svc.DeleteFeedback(ctx, Caller{Email: "b@x.com"}, "a@x.com")
	require.ErrorIs(t, err, ErrForbidden)

	del, err := svc.DeleteFeedback(ctx, Caller{Email: "a@x.com"}, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, int64(2), del.Deleted)
}

func TestStats(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()
	for _, status := range []models.IssueStatus{models.StatusPending, models.StatusPending, models.StatusInProgress, models.StatusResolved} {
		_, err := st.InsertIssue(ctx, &models.Issue{Title: "t", Status: status})
		require.NoError(t, err)
	}
	_, err := st.InsertUser(ctx, &models.User{Email: "admin@x.com", Role: models.RoleAdmin})
	require.NoError(t, err)

	stats, err := svc.DashboardStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.IssueStats{Total: 4, Pending: 2, InProgress: 1, Resolved: 1}, stats)

	admin, err := svc.AdminStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), admin.IssueStats.Total)
	assert.Equal(t, int64(1), admin.UserStats.Total)

	d, err := svc.AuthorizeAdmin(ctx, Caller{Email: "admin@x.com"})
	require.NoError(t, err)
	assert.True(t, d.Allowed())

	d, err = svc.AuthorizeAdmin(ctx, Caller{Email: "nobody@x.com"})
	require.NoError(t, err)
	assert.Equal(t, Forbidden, d.Kind)

	d, err = svc.AuthorizeAdmin(ctx, Caller{})
	require.NoError(t, err)
	assert.Equal(t, Unauthenticated, d.Kind)
}

func TestPremiumCheckoutAndConfirm(t *testing.T) {
	svc, st, proc := newTestService(t)
	ctx := context.Background()
	caller := Caller{Email: "a@x.com"}
	_, err := svc.UpsertUser(ctx, models.CreateUserRequest{Email: "a@x.com"})
	require.NoError(t, err)

	_, err = svc.CreatePremiumCheckout(ctx, Caller{Email: "b@x.com"}, models.PremiumCheckoutRequest{Email: "a@x.com"})
	require.ErrorIs(t, err, ErrForbidden)

	co, err := svc.CreatePremiumCheckout(ctx, caller, models.PremiumCheckoutRequest{Email: "a@x.com", UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/"+co.SessionID, co.URL)
	assert.Equal(t, "https://civic.example/payment-cancelled", co.CancelURL)
	require.Len(t, proc.requests, 1)
	assert.Equal(t, int64(100000), proc.requests[0].Amount)
	assert.Equal(t, "https://civic.example/payment-success?session_id="+co.SessionID, proc.requests[0].ReturnURL)
	assert.Equal(t, "premium", proc.requests[0].Metadata["kind"])

	// Not yet paid: nothing changes.
	res, err := svc.ConfirmPayment(ctx, caller, co.SessionID)
	require.ErrorIs(t, err, ErrPaymentIncomplete)
	assert.False(t, res.Success)
	user, err := st.FindUser(ctx, "a@x.com")
	require.NoError(t, err)
	assert.False(t, user.IsPremium)

	proc.markPaid("chrg_" + co.SessionID)
	res, err = svc.ConfirmPayment(ctx, caller, co.SessionID)
	require.NoError(t, err)
	assert.True(t, res.Success)

	user, err = st.FindUser(ctx, "a@x.com")
	require.NoError(t, err)
	assert.True(t, user.IsPremium)
	assert.Equal(t, models.PaymentPaid, user.PaymentStatus)

	p, err := st.GetPayment(ctx, co.SessionID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, p.Status)
}

func TestBoostCheckoutAndConfirm(t *testing.T) {
	svc, st, proc := newTestService(t)
	ctx := context.Background()
	caller := Caller{Email: "a@x.com"}
	id := report(t, svc, "a@x.com", "Pothole")

	_, err := svc.CreateBoostCheckout(ctx, caller, models.BoostCheckoutRequest{IssueID: "ffffffffffffffffffffffff", Email: "a@x.com"})
	require.ErrorIs(t, err, ErrNotFound)

	co, err := svc.CreateBoostCheckout(ctx, caller, models.BoostCheckoutRequest{IssueID: id, Email: "a@x.com"})
	require.NoError(t, err)
	require.Len(t, proc.requests, 1)
	assert.Equal(t, id, proc.requests[0].Metadata["issueId"])
	assert.Equal(t, "Boost issue: Pothole", proc.requests[0].Description)

	_, err = svc.ConfirmPayment(ctx, caller, co.SessionID)
	require.ErrorIs(t, err, ErrPaymentIncomplete)
	issue, err := st.GetIssue(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.PriorityNormal, issue.Priority)

	proc.markPaid("chrg_" + co.SessionID)
	res, err := svc.ConfirmPayment(ctx, caller, co.SessionID)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "boost", res.Kind)

	issue, err = st.GetIssue(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.PriorityHigh, issue.Priority)
	assert.Equal(t, models.PaymentPaid, issue.PaymentStatus)
	assert.NotNil(t, issue.PremiumSince)
}

func TestConfirmPayment_UnknownSession(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.ConfirmPayment(context.Background(), Caller{Email: "a@x.com"}, "nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCheckout_Unavailable(t *testing.T) {
	svc := New(db.NewMemoryStore(), nil, nil, testConfig())
	_, err := svc.CreatePremiumCheckout(context.Background(), Caller{Email: "a@x.com"}, models.PremiumCheckoutRequest{Email: "a@x.com"})
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestPurgeExpiredCheckouts(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()

	co, err := svc.CreatePremiumCheckout(ctx, Caller{Email: "a@x.com"}, models.PremiumCheckoutRequest{Email: "a@x.com"})
	require.NoError(t, err)

	n, err := svc.PurgeExpiredCheckouts(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	svc.now = func() time.Time { return time.Now().Add(time.Hour) }
	n, err = svc.PurgeExpiredCheckouts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = st.GetPayment(ctx, co.SessionID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUploadIssueImage(t *testing.T) {
	up := &fakeUploader{}
	svc := New(db.NewMemoryStore(), nil, up, testConfig())

	url, err := svc.UploadIssueImage(context.Background(), Caller{Email: "a@x.com"}, strings.NewReader("png-bytes"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "https://storage.googleapis.com/bucket/issues/img.png", url)
	assert.Equal(t, "issues", up.folder)
	assert.Equal(t, "png-bytes", up.body)

	_, err = svc.UploadIssueImage(context.Background(), Caller{Email: "a@x.com"}, strings.NewReader("<script>"), "text/html")
	require.ErrorIs(t, err, ErrUnsupportedImage)
	assert.Equal(t, "png-bytes", up.body, "rejected upload must not reach storage")

	_, err = New(db.NewMemoryStore(), nil, nil, testConfig()).UploadIssueImage(context.Background(), Caller{Email: "a@x.com"}, strings.NewReader(""), "")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestDecisionErr(t *testing.T) {
	assert.NoError(t, Allow().Err())
	assert.ErrorIs(t, NoIdentity().Err(), ErrUnauthenticated)

	err := Deny("nope").Err()
	assert.ErrorIs(t, err, ErrForbidden)
	var fe *ForbiddenError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "nope", fe.Reason)
}

func TestPurgeExpiredCheckouts_AppliesPaidCheckout(t *testing.T) {
	svc, st, proc := newTestService(t)
	ctx := context.Background()
	caller := Caller{Email: "a@x.com"}

	co, err := svc.CreatePremiumCheckout(ctx, caller, models.PremiumCheckoutRequest{Email: "a@x.com"})
	require.NoError(t, err)
	proc.markPaid("chrg_" + co.SessionID)

	svc.now = func() time.Time { return time.Now().Add(31 * time.Minute) }
	n, err := svc.PurgeExpiredCheckouts(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	user, err := st.FindUser(ctx, "a@x.com")
	require.NoError(t, err)
	assert.True(t, user.IsPremium)

	res, err := svc.ConfirmPayment(ctx, caller, co.SessionID)
	require.NoError(t, err)
	assert.True(t, res.Success)
}

func TestPurgeExpiredCheckouts_KeepsWhenProcessorFails(t *testing.T) {
	svc, st, proc := newTestService(t)
	ctx := context.Background()

	co, err := svc.CreatePremiumCheckout(ctx, Caller{Email: "a@x.com"}, models.PremiumCheckoutRequest{Email: "a@x.com"})
	require.NoError(t, err)
	proc.retrieveErr = errors.New("processor unreachable")

	svc.now = func() time.Time { return time.Now().Add(time.Hour) }
	n, err := svc.PurgeExpiredCheckouts(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = st.GetPayment(ctx, co.SessionID)
	require.NoError(t, err)
}

func TestConfirmPayment_CreatesMissingUser(t *testing.T) {
	svc, st, proc := newTestService(t)
	ctx := context.Background()
	caller := Caller{Email: "payer@x.com"}

	co, err := svc.CreatePremiumCheckout(ctx, caller, models.PremiumCheckoutRequest{Email: "payer@x.com"})
	require.NoError(t, err)
	proc.markPaid("chrg_" + co.SessionID)

	res, err := svc.ConfirmPayment(ctx, caller, co.SessionID)
	require.NoError(t, err)
	assert.True(t, res.Success)

	user, err := st.FindUser(ctx, "payer@x.com")
	require.NoError(t, err)
	assert.True(t, user.IsPremium)

	for i := 0; i < 4; i++ {
		report(t, svc, "payer@x.com", "t")
	}
}

func TestConfirmPayment_BoostedIssueDeleted(t *testing.T) {
	svc, st, proc := newTestService(t)
	ctx := context.Background()
	caller := Caller{Email: "a@x.com"}
	id := report(t, svc, "a@x.com", "Pothole")

	co, err := svc.CreateBoostCheckout(ctx, caller, models.BoostCheckoutRequest{IssueID: id, Email: "a@x.com"})
	require.NoError(t, err)
	_, err = svc.DeleteIssue(ctx, caller, id)
	require.NoError(t, err)
	proc.markPaid("chrg_" + co.SessionID)

	for i := 0; i < 2; i++ {
		res, err := svc.ConfirmPayment(ctx, caller, co.SessionID)
		require.NoError(t, err)
		assert.True(t, res.Success)
	}

	p, err := st.GetPayment(ctx, co.SessionID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, p.Status)

	user, err := st.FindUser(ctx, "a@x.com")
	require.NoError(t, err)
	assert.True(t, user.IsPremium)
}

func TestConfirmPayment_AlreadyPaidWritesNothing(t *testing.T) {
	svc, st, proc := newTestService(t)
	ctx := context.Background()
	caller := Caller{Email: "a@x.com"}
	id := report(t, svc, "a@x.com", "Pothole")

	co, err := svc.CreateBoostCheckout(ctx, caller, models.BoostCheckoutRequest{IssueID: id, Email: "a@x.com"})
	require.NoError(t, err)
	proc.markPaid("chrg_" + co.SessionID)

	_, err = svc.ConfirmPayment(ctx, caller, co.SessionID)
	require.NoError(t, err)
	user, err := st.FindUser(ctx, "a@x.com")
	require.NoError(t, err)
	issue, err := st.GetIssue(ctx, id)
	require.NoError(t, err)
	userSince, issueSince := *user.PremiumSince, *issue.PremiumSince

	svc.now = func() time.Time { return time.Now().Add(time.Hour) }
	proc.retrieveErr = errors.New("must not be called")
	res, err := svc.ConfirmPayment(ctx, caller, co.SessionID)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "boost", res.Kind)

	user, err = st.FindUser(ctx, "a@x.com")
	require.NoError(t, err)
	issue, err = st.GetIssue(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, userSince, *user.PremiumSince)
	assert.Equal(t, issueSince, *issue.PremiumSince)
}
