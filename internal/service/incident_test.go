package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/shenikar/city_alert/internal/models"
	"github.com/shenikar/city_alert/internal/service/mocks"
)

type incidentMocks struct {
	repo     *mocks.MockIncidentRepository
	depts    *mocks.MockDepartmentRepository
	geocoder *mocks.MockGeocoder
	images   *mocks.MockImageStore
	notifier *mocks.MockNotifier
}

var fixedNow = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

// newTestIncidentService — вспомогательная функция для создания инстанса сервиса с моками.
func newTestIncidentService(t *testing.T, opts IncidentOptions) (*incidentService, incidentMocks) {
	ctrl := gomock.NewController(t)
	m := incidentMocks{
		repo:     mocks.NewMockIncidentRepository(ctrl),
		depts:    mocks.NewMockDepartmentRepository(ctrl),
		geocoder: mocks.NewMockGeocoder(ctrl),
		images:   mocks.NewMockImageStore(ctrl),
		notifier: mocks.NewMockNotifier(ctrl),
	}

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	svc := NewIncidentService(m.repo, m.depts, m.geocoder, m.images, m.notifier, opts, logger).(*incidentService)
	svc.now = func() time.Time { return fixedNow }
	return svc, m
}

func ptr[T any](v T) *T {
	return &v
}

func validDraft() models.IncidentDraft {
	return models.IncidentDraft{
		Description:              "Pothole on the road",
		Location:                 "Main St & 5th Ave",
		DepartmentClassification: "PUBLIC_WORKS",
	}
}

func TestTimeAgo(t *testing.T) {
	cases := []struct {
		ago  time.Duration
		want string
	}{
		{30 * time.Second, "less than a minute ago"},
		{90 * time.Second, "1 minute ago"},
		{5 * time.Minute, "5 minutes ago"},
		{59 * time.Minute, "59 minutes ago"},
		{time.Hour, "1 hour ago"},
		{5 * time.Hour, "5 hours ago"},
		{25 * time.Hour, "1 day ago"},
		{72 * time.Hour, "3 days ago"},
	}

	for _, tc := range cases {
		t.Run(tc.want, func(t *testing.T) {
			assert.Equal(t, tc.want, TimeAgo(fixedNow.Add(-tc.ago), fixedNow))
		})
	}
}

func TestCreateIncident_Success(t *testing.T) {
	// Подготовка
	service, m := newTestIncidentService(t, IncidentOptions{DuplicateWindow: time.Hour})
	ctx := context.Background()
	draft := validDraft()
	lat, lng := 40.7, -74.0

	// Ожидания
	m.repo.EXPECT().FindExactDuplicate(ctx, draft.Description, draft.Location, fixedNow.Add(-time.Hour)).Return(nil, nil)
	m.repo.EXPECT().FindActiveAtLocation(ctx, draft.Location, draft.DepartmentClassification, fixedNow.Add(-time.Hour)).Return(nil, nil)
	m.geocoder.EXPECT().Geocode(ctx, draft.Location).Return(&lat, &lng)
	m.repo.EXPECT().
		Create(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, inc *models.Incident) error {
			inc.ID = 42
			inc.Timestamp = fixedNow
			return nil
		})
	m.notifier.EXPECT().NotifyNewIncident(gomock.Any(), gomock.Any()).Times(0)

	// Действие
	incident, err := service.CreateIncident(ctx, draft)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, int64(42), incident.ID)
	assert.Equal(t, models.StatusReported, incident.Status)
	assert.Nil(t, incident.ImageURL)
	require.NotNil(t, incident.Latitude)
	assert.InDelta(t, lat, *incident.Latitude, 1e-9)
	assert.InDelta(t, lng, *incident.Longitude, 1e-9)
}

func TestCreateIncident_NotifiesSubscribersWhenEnabled(t *testing.T) {
	service, m := newTestIncidentService(t, IncidentOptions{NotifySubscribers: true})
	ctx := context.Background()

	m.repo.EXPECT().FindExactDuplicate(ctx, gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
	m.repo.EXPECT().FindActiveAtLocation(ctx, gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
	m.geocoder.EXPECT().Geocode(ctx, gomock.Any()).Return(nil, nil)
	m.repo.EXPECT().Create(ctx, gomock.Any()).Return(nil)
	m.notifier.EXPECT().NotifyNewIncident(ctx, gomock.Any()).Return(3, 0).Times(1)

	incident, err := service.CreateIncident(ctx, validDraft())

	require.NoError(t, err)
	assert.Nil(t, incident.Latitude)
	assert.Nil(t, incident.Longitude)
}

func TestCreateIncident_MissingFields(t *testing.T) {
	service, m := newTestIncidentService(t, IncidentOptions{})
	m.repo.EXPECT().FindExactDuplicate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	drafts := []models.IncidentDraft{
		{Location: "x", DepartmentClassification: "POLICE"},
		{Description: "x", DepartmentClassification: "POLICE"},
		{Description: "x", Location: "x", DepartmentClassification: "   "},
	}
	for i, draft := range drafts {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			_, err := service.CreateIncident(context.Background(), draft)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestCreateIncident_ExactDuplicate(t *testing.T) {
	service, m := newTestIncidentService(t, IncidentOptions{})
	ctx := context.Background()
	existing := &models.Incident{ID: 7, Description: "Pothole on the road"}

	m.repo.EXPECT().FindExactDuplicate(ctx, gomock.Any(), gomock.Any(), gomock.Any()).Return(existing, nil)
	m.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)

	incident, err := service.CreateIncident(ctx, validDraft())

	assert.Nil(t, incident)
	var dupErr *DuplicateError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, DuplicateExact, dupErr.Kind)
	assert.Equal(t, existing, dupErr.Existing)
	assert.Empty(t, dupErr.TimeAgo)
}

func TestCreateIncident_ActiveIncidentAtLocation(t *testing.T) {
	service, m := newTestIncidentService(t, IncidentOptions{})
	ctx := context.Background()
	existing := &models.Incident{ID: 8, Status: models.StatusInProgress, Timestamp: fixedNow.Add(-5 * time.Minute)}

	m.repo.EXPECT().FindExactDuplicate(ctx, gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
	m.repo.EXPECT().FindActiveAtLocation(ctx, gomock.Any(), gomock.Any(), gomock.Any()).Return(existing, nil)
	m.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)

	_, err := service.CreateIncident(ctx, validDraft())

	var dupErr *DuplicateError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, DuplicateNear, dupErr.Kind)
	assert.Equal(t, "5 minutes ago", dupErr.TimeAgo)
	assert.Contains(t, dupErr.Error(), "5 minutes ago")
}

func TestCreateIncident_Images(t *testing.T) {
	t.Run("data uri is saved", func(t *testing.T) {
		service, m := newTestIncidentService(t, IncidentOptions{})
		draft := validDraft()
		draft.Image = "data:image/png;base64,aGVsbG8="

		m.repo.EXPECT().FindExactDuplicate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
		m.repo.EXPECT().FindActiveAtLocation(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
		m.images.EXPECT().SaveDataURI(draft.Image).Return("/uploads/abc.png", nil)
		m.geocoder.EXPECT().Geocode(gomock.Any(), gomock.Any()).Return(nil, nil)
		m.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

		incident, err := service.CreateIncident(context.Background(), draft)

		require.NoError(t, err)
		require.NotNil(t, incident.ImageURL)
		assert.Equal(t, "/uploads/abc.png", *incident.ImageURL)
	})

	t.Run("decode failure keeps incident", func(t *testing.T) {
		service, m := newTestIncidentService(t, IncidentOptions{})
		draft := validDraft()
		draft.Image = "data:image/png;base64,!!!"

		m.repo.EXPECT().FindExactDuplicate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
		m.repo.EXPECT().FindActiveAtLocation(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
		m.images.EXPECT().SaveDataURI(draft.Image).Return("", errors.New("bad base64"))
		m.geocoder.EXPECT().Geocode(gomock.Any(), gomock.Any()).Return(nil, nil)
		m.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

		incident, err := service.CreateIncident(context.Background(), draft)

		require.NoError(t, err)
		assert.Nil(t, incident.ImageURL)
	})

	t.Run("plain url stored verbatim", func(t *testing.T) {
		service, m := newTestIncidentService(t, IncidentOptions{})
		draft := validDraft()
		draft.Image = "https://example.com/photo.jpg"

		m.repo.EXPECT().FindExactDuplicate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
		m.repo.EXPECT().FindActiveAtLocation(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
		m.images.EXPECT().SaveDataURI(gomock.Any()).Times(0)
		m.geocoder.EXPECT().Geocode(gomock.Any(), gomock.Any()).Return(nil, nil)
		m.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

		incident, err := service.CreateIncident(context.Background(), draft)

		require.NoError(t, err)
		require.NotNil(t, incident.ImageURL)
		assert.Equal(t, draft.Image, *incident.ImageURL)
	})
}

func TestCreateIncident_RepositoryError(t *testing.T) {
	service, m := newTestIncidentService(t, IncidentOptions{})
	dbErr := errors.New("db is down")

	m.repo.EXPECT().FindExactDuplicate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
	m.repo.EXPECT().FindActiveAtLocation(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
	m.geocoder.EXPECT().Geocode(gomock.Any(), gomock.Any()).Return(nil, nil)
	m.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(dbErr)

	_, err := service.CreateIncident(context.Background(), validDraft())

	assert.ErrorIs(t, err, dbErr)
}

func TestGetIncident_Success_FromCache(t *testing.T) {
	// Подготовка
	service, m := newTestIncidentService(t, IncidentOptions{})
	ctx := context.Background()
	expected := &models.Incident{ID: 1, Description: "Тестовый инцидент из кеша"}

	// Ожидания
	m.repo.EXPECT().GetIncidentFromCache(ctx, int64(1)).Return(expected, nil).Times(1)
	m.repo.EXPECT().GetByID(gomock.Any(), gomock.Any()).Times(0)

	// Действие
	incident, err := service.GetIncident(ctx, 1)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, expected, incident)
}

func TestGetIncident_Success_FromDB(t *testing.T) {
	service, m := newTestIncidentService(t, IncidentOptions{})
	ctx := context.Background()
	expected := &models.Incident{ID: 2, Description: "Тестовый инцидент из БД"}

	// 1. Промах кеша
	m.repo.EXPECT().GetIncidentFromCache(ctx, int64(2)).Return(nil, nil).Times(1)
	// 2. Попадание в БД
	m.repo.EXPECT().GetByID(ctx, int64(2)).Return(expected, nil).Times(1)
	// 3. Запись в кеш
	m.repo.EXPECT().SetIncidentCache(ctx, expected).Return(nil).Times(1)

	incident, err := service.GetIncident(ctx, 2)

	require.NoError(t, err)
	assert.Equal(t, expected, incident)
}

func TestGetIncident_CacheErrorFallsBackToDB(t *testing.T) {
	service, m := newTestIncidentService(t, IncidentOptions{})
	ctx := context.Background()
	expected := &models.Incident{ID: 3}

	m.repo.EXPECT().GetIncidentFromCache(ctx, int64(3)).Return(nil, errors.New("redis down"))
	m.repo.EXPECT().GetByID(ctx, int64(3)).Return(expected, nil)
	m.repo.EXPECT().SetIncidentCache(ctx, expected).Return(errors.New("redis down"))

	incident, err := service.GetIncident(ctx, 3)

	require.NoError(t, err)
	assert.Equal(t, expected, incident)
}

func TestGetIncident_NotFound(t *testing.T) {
	service, m := newTestIncidentService(t, IncidentOptions{})
	ctx := context.Background()

	m.repo.EXPECT().GetIncidentFromCache(ctx, int64(99)).Return(nil, nil)
	m.repo.EXPECT().GetByID(ctx, int64(99)).Return(nil, fmt.Errorf("repo: %w", models.ErrNotFound))
	m.repo.EXPECT().SetIncidentCache(gomock.Any(), gomock.Any()).Times(0)

	incident, err := service.GetIncident(ctx, 99)

	assert.Nil(t, incident)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestListIncidents_PassesFilter(t *testing.T) {
	service, m := newTestIncidentService(t, IncidentOptions{})
	ctx := context.Background()
	filter := models.IncidentFilter{Status: models.StatusReported, Department: "POLICE"}
	expected := []*models.Incident{{ID: 1}, {ID: 2}}

	m.repo.EXPECT().List(ctx, filter).Return(expected, nil)

	incidents, err := service.ListIncidents(ctx, filter)

	require.NoError(t, err)
	assert.Equal(t, expected, incidents)
}

func TestUpdateIncident_StatusChangeNotifies(t *testing.T) {
	service, m := newTestIncidentService(t, IncidentOptions{NotifySubscribers: true})
	ctx := context.Background()
	patch := models.IncidentPatch{Status: ptr(models.StatusInProgress)}
	before := &models.Incident{ID: 5, Status: models.StatusReported}
	after := &models.Incident{ID: 5, Status: models.StatusInProgress}

	m.geocoder.EXPECT().Geocode(gomock.Any(), gomock.Any()).Times(0)
	m.repo.EXPECT().Update(ctx, int64(5), patch).Return(before, after, nil)
	m.repo.EXPECT().InvalidateIncidentCache(ctx, int64(5)).Return(nil)
	m.notifier.EXPECT().NotifyStatusChange(ctx, after, models.StatusReported).Return(1, 0)

	updated, err := service.UpdateIncident(ctx, 5, patch)

	require.NoError(t, err)
	assert.Equal(t, after, updated)
}

func TestUpdateIncident_SameStatusDoesNotNotify(t *testing.T) {
	service, m := newTestIncidentService(t, IncidentOptions{NotifySubscribers: true})
	ctx := context.Background()
	patch := models.IncidentPatch{Description: ptr("Updated")}
	before := &models.Incident{ID: 5, Status: models.StatusReported}
	after := &models.Incident{ID: 5, Status: models.StatusReported, Description: "Updated"}

	m.repo.EXPECT().Update(ctx, int64(5), patch).Return(before, after, nil)
	m.repo.EXPECT().InvalidateIncidentCache(ctx, int64(5)).Return(nil)
	m.notifier.EXPECT().NotifyStatusChange(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	_, err := service.UpdateIncident(ctx, 5, patch)

	require.NoError(t, err)
}

func TestUpdateIncident_LocationIsGeocoded(t *testing.T) {
	service, m := newTestIncidentService(t, IncidentOptions{})
	ctx := context.Background()
	lat, lng := 1.5, 2.5

	m.geocoder.EXPECT().Geocode(ctx, "New place").Return(&lat, &lng)
	m.repo.EXPECT().
		Update(ctx, int64(6), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ int64, patch models.IncidentPatch) (*models.Incident, *models.Incident, error) {
			require.NotNil(t, patch.Coordinates)
			assert.Equal(t, &lat, patch.Coordinates.Latitude)
			assert.Equal(t, &lng, patch.Coordinates.Longitude)
			return &models.Incident{ID: 6}, &models.Incident{ID: 6, Location: "New place"}, nil
		})
	m.repo.EXPECT().InvalidateIncidentCache(ctx, int64(6)).Return(nil)

	updated, err := service.UpdateIncident(ctx, 6, models.IncidentPatch{Location: ptr("New place")})

	require.NoError(t, err)
	assert.Equal(t, "New place", updated.Location)
}

func TestUpdateIncident_Validation(t *testing.T) {
	service, m := newTestIncidentService(t, IncidentOptions{})
	m.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	patches := map[string]models.IncidentPatch{
		"bad status":        {Status: ptr("closed")},
		"empty description": {Description: ptr("  ")},
		"empty location":    {Location: ptr("")},
		"empty department":  {DepartmentClassification: ptr("")},
	}
	for name, patch := range patches {
		t.Run(name, func(t *testing.T) {
			_, err := service.UpdateIncident(context.Background(), 1, patch)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestUpdateIncident_NotFound(t *testing.T) {
	service, m := newTestIncidentService(t, IncidentOptions{})

	m.repo.EXPECT().Update(gomock.Any(), int64(404), gomock.Any()).Return(nil, nil, models.ErrNotFound)
	m.repo.EXPECT().InvalidateIncidentCache(gomock.Any(), gomock.Any()).Times(0)

	_, err := service.UpdateIncident(context.Background(), 404, models.IncidentPatch{Status: ptr(models.StatusResolved)})

	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDeleteIncident_WithoutCredentials(t *testing.T) {
	service, m := newTestIncidentService(t, IncidentOptions{})
	ctx := context.Background()

	m.depts.EXPECT().GetByLoginKey(gomock.Any(), gomock.Any()).Times(0)
	m.repo.EXPECT().
		Delete(ctx, int64(1), gomock.Nil()).
		Return(nil)
	m.repo.EXPECT().InvalidateIncidentCache(ctx, int64(1)).Return(nil)

	err := service.DeleteIncident(ctx, 1, models.DepartmentCredentials{})

	require.NoError(t, err)
}

func TestDeleteIncident_AuthorizedDepartment(t *testing.T) {
	service, m := newTestIncidentService(t, IncidentOptions{})
	ctx := context.Background()
	police := &models.Department{ID: 1, Name: "POLICE"}

	m.depts.EXPECT().GetByLoginKey(ctx, "police-key").Return(police, nil)
	m.repo.EXPECT().
		Delete(ctx, int64(1), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ int64, authorize func(*models.Incident) error) error {
			require.NotNil(t, authorize)
			assert.NoError(t, authorize(&models.Incident{DepartmentClassification: "FIRE,POLICE"}))
			return authorize(&models.Incident{DepartmentClassification: "POLICE"})
		})
	m.repo.EXPECT().InvalidateIncidentCache(ctx, int64(1)).Return(nil)

	err := service.DeleteIncident(ctx, 1, models.DepartmentCredentials{Key: "police-key", Name: "police"})

	require.NoError(t, err)
}

func TestDeleteIncident_ForbiddenDepartment(t *testing.T) {
	service, m := newTestIncidentService(t, IncidentOptions{})
	ctx := context.Background()

	m.depts.EXPECT().GetByLoginKey(ctx, "fire-key").Return(&models.Department{Name: "FIRE"}, nil)
	m.repo.EXPECT().
		Delete(ctx, int64(2), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ int64, authorize func(*models.Incident) error) error {
			return authorize(&models.Incident{DepartmentClassification: "POLICE"})
		})
	m.repo.EXPECT().InvalidateIncidentCache(gomock.Any(), gomock.Any()).Times(0)

	err := service.DeleteIncident(ctx, 2, models.DepartmentCredentials{Key: "fire-key", Name: "FIRE"})

	assert.ErrorIs(t, err, ErrForbidden)
}

func TestDeleteIncident_InvalidCredentials(t *testing.T) {
	t.Run("unknown key", func(t *testing.T) {
		service, m := newTestIncidentService(t, IncidentOptions{})
		m.depts.EXPECT().GetByLoginKey(gomock.Any(), "nope").Return(nil, models.ErrNotFound)
		m.repo.EXPECT().Delete(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		err := service.DeleteIncident(context.Background(), 1, models.DepartmentCredentials{Key: "nope", Name: "POLICE"})

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("name mismatch", func(t *testing.T) {
		service, m := newTestIncidentService(t, IncidentOptions{})
		m.depts.EXPECT().GetByLoginKey(gomock.Any(), "police-key").Return(&models.Department{Name: "POLICE"}, nil)
		m.repo.EXPECT().Delete(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		err := service.DeleteIncident(context.Background(), 1, models.DepartmentCredentials{Key: "police-key", Name: "FIRE"})

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestDeleteIncident_NotFound(t *testing.T) {
	service, m := newTestIncidentService(t, IncidentOptions{})

	m.repo.EXPECT().Delete(gomock.Any(), int64(404), gomock.Any()).Return(models.ErrNotFound)

	err := service.DeleteIncident(context.Background(), 404, models.DepartmentCredentials{})

	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestClearIncidents(t *testing.T) {
	service, m := newTestIncidentService(t, IncidentOptions{})
	ctx := context.Background()

	m.repo.EXPECT().DeleteAll(ctx).Return(int64(12), nil)
	m.repo.EXPECT().FlushIncidentCache(ctx).Return(nil)

	deleted, err := service.ClearIncidents(ctx)

	require.NoError(t, err)
	assert.Equal(t, int64(12), deleted)
}
