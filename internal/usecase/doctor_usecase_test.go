package usecase

import (
	"testing"

	"clinic-booking/internal/delivery/dto"
	"clinic-booking/internal/domain/entity"
	"clinic-booking/internal/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCreateDoctorAvailabilityForms(t *testing.T) {
	tests := []struct {
		name      string
		req       dto.CreateDoctorRequest
		wantDays  []string
		wantStart string
		wantEnd   string
		wantErr   error
	}{
		{
			name:      "structured",
			req:       dto.CreateDoctorRequest{AvailableDays: []string{"Wednesday", "monday"}, AvailableStart: "09:00", AvailableEnd: "12:00"},
			wantDays:  []string{"Monday", "Wednesday"},
			wantStart: "09:00",
			wantEnd:   "12:00",
		},
		{
			name:      "legacy text",
			req:       dto.CreateDoctorRequest{AvailableTime: "Tuesday, Friday | 13:00 - 16:30"},
			wantDays:  []string{"Tuesday", "Friday"},
			wantStart: "13:00",
			wantEnd:   "16:30",
		},
		{
			name:      "structured wins over text",
			req:       dto.CreateDoctorRequest{AvailableDays: []string{"Sunday"}, AvailableStart: "08:00", AvailableEnd: "09:00", AvailableTime: "Monday | 09:00 - 10:00"},
			wantDays:  []string{"Sunday"},
			wantStart: "08:00",
			wantEnd:   "09:00",
		},
		{
			name:     "unparsable text is unspecified",
			req:      dto.CreateDoctorRequest{AvailableTime: "by appointment"},
			wantDays: []string{},
		},
		{
			name:     "nothing given is unspecified",
			req:      dto.CreateDoctorRequest{},
			wantDays: []string{},
		},
		{
			name:    "start after end",
			req:     dto.CreateDoctorRequest{AvailableDays: []string{"Monday"}, AvailableStart: "12:00", AvailableEnd: "09:00"},
			wantErr: ErrInvalidTimeRange,
		},
		{
			name:     "incomplete structured is unspecified",
			req:      dto.CreateDoctorRequest{AvailableDays: []string{"Monday"}, AvailableStart: "09:00"},
			wantDays: []string{},
		},
		{
			name:    "bad clock",
			req:     dto.CreateDoctorRequest{AvailableDays: []string{"Monday"}, AvailableStart: "9am", AvailableEnd: "12:00"},
			wantErr: ErrInvalidTimeFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			req := tt.req
			req.Name = "Anan"
			req.Specialty = "General"

			resp, err := env.doctors().CreateDoctor(asAdmin(1), &req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.wantDays, resp.AvailableDays)
			assert.Equal(t, tt.wantStart, resp.AvailableStart)
			assert.Equal(t, tt.wantEnd, resp.AvailableEnd)

			stored, err := env.doctors().GetDoctor(asAdmin(1), resp.ID)
			require.NoError(t, err)
			assert.Equal(t, resp.AvailableTime, stored.AvailableTime)
		})
	}
}

func TestListDoctorsOrderedByName(t *testing.T) {
	env := newTestEnv(t)
	env.createDoctor(t, "Somchai", "")
	env.createDoctor(t, "Anan", "Monday | 09:00 - 10:00")

	list, err := env.doctors().ListDoctors(asPatient(&entity.Patient{ID: 1, Name: "A"}))
	require.NoError(t, err)
	require.Equal(t, 2, list.Total)
	assert.Equal(t, "Anan", list.Doctors[0].Name)
	assert.Equal(t, "Somchai", list.Doctors[1].Name)
}

func TestDeleteDoctor(t *testing.T) {
	env := newTestEnv(t)
	a := env.createPatient(t, "A", "0811111111")
	doctor := env.createDoctor(t, "Anan", "Monday | 09:00 - 10:00")
	uc := env.doctors()

	booked, err := env.appointments().Book(asPatient(a), bookReq(doctor.ID, monday, "09:00"))
	require.NoError(t, err)

	assert.ErrorIs(t, uc.DeleteDoctor(asAdmin(1), doctor.ID), ErrDoctorHasActiveBookings)

	require.NoError(t, env.appointments().Cancel(asPatient(a), booked.ID))
	require.NoError(t, uc.DeleteDoctor(asAdmin(1), doctor.ID))

	_, err = uc.GetDoctor(asAdmin(1), doctor.ID)
	assert.ErrorIs(t, err, ErrDoctorNotFound)

	// cancelled history goes with the doctor
	gone, err := env.appointmentRepo.FindByID(env.db, booked.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	assert.ErrorIs(t, uc.DeleteDoctor(asAdmin(1), doctor.ID), ErrDoctorNotFound)
}

// lockRecordingRepository notes which row lock each doctor lookup asked for
type lockRecordingRepository struct {
	repository.DoctorRepository
	locks []string
}

func (r *lockRecordingRepository) FindByIDForUpdate(db *gorm.DB, id int64) (*entity.Doctor, error) {
	r.locks = append(r.locks, "update")
	return r.DoctorRepository.FindByIDForUpdate(db, id)
}

func (r *lockRecordingRepository) FindByIDForShare(db *gorm.DB, id int64) (*entity.Doctor, error) {
	r.locks = append(r.locks, "share")
	return r.DoctorRepository.FindByIDForShare(db, id)
}

func TestBookAndDeleteDoctorSerializeOnDoctorRow(t *testing.T) {
	env := newTestEnv(t)
	recorder := &lockRecordingRepository{DoctorRepository: env.doctorRepo}
	env.doctorRepo = recorder

	patient := env.createPatient(t, "Nok", "0811111111")
	doctor := env.createDoctor(t, "Anan", "Monday | 09:00 - 10:00")

	appointment, err := env.appointments().Book(asPatient(patient), bookReq(doctor.ID, monday, "09:00"))
	require.NoError(t, err)
	assert.Equal(t, []string{"share"}, recorder.locks)

	err = env.doctors().DeleteDoctor(asAdmin(1), doctor.ID)
	assert.ErrorIs(t, err, ErrDoctorHasActiveBookings)
	assert.Equal(t, []string{"share", "update"}, recorder.locks)

	require.NoError(t, env.appointments().Cancel(asPatient(patient), appointment.ID))
	require.NoError(t, env.doctors().DeleteDoctor(asAdmin(1), doctor.ID))
	assert.Equal(t, []string{"share", "update", "update"}, recorder.locks)
}
