package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Reserva estados
const (
	ReservaConfirmada = "confirmada"
	ReservaEnCurso    = "en_curso"
	ReservaFinalizada = "finalizada"
	ReservaCancelada  = "cancelada"
)

// Habitacion estados
const (
	HabitacionDisponible    = "disponible"
	HabitacionOcupada       = "ocupada"
	HabitacionLimpieza      = "limpieza"
	HabitacionMantenimiento = "mantenimiento"
)

// TableName pins the Spanish plural; GORM would produce "habitacions".
func (Habitacion) TableName() string { return "habitaciones" }

// Habitacion is a hotel room with its nightly rate.
type Habitacion struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Numero      string          `gorm:"uniqueIndex;not null"`
	Tipo        string          `gorm:"type:varchar(30);not null"` // simple | doble | matrimonial | suite
	TarifaNoche decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Estado      string          `gorm:"type:varchar(20);not null;default:'disponible'"`
	Activa      bool            `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName pins the Spanish plural; GORM would produce "huespeds".
func (Huesped) TableName() string { return "huespedes" }

// Huesped is a guest record.
type Huesped struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TipoDocumento string    `gorm:"type:varchar(10);not null"` // dni | ruc | pasaporte | ce
	Documento     string    `gorm:"type:varchar(15);not null;index"`
	Nombre        string    `gorm:"not null"`
	Email         *string
	Telefono      *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Reserva ties a guest to a room for a date range. CheckoutFecha moves
// forward when a full-day late checkout extends the stay.
type Reserva struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	HabitacionID uuid.UUID `gorm:"type:uuid;not null;index"`
	HuespedID    uuid.UUID `gorm:"type:uuid;not null;index"`
	CheckinFecha time.Time `gorm:"not null"`
	CheckoutFecha time.Time `gorm:"not null"`
	Estado       string    `gorm:"type:varchar(20);not null;default:'confirmada'"`
	// CheckinAt / CheckoutAt record when the guest actually arrived / left.
	CheckinAt  *time.Time
	CheckoutAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Habitacion Habitacion `gorm:"foreignKey:HabitacionID"`
	Huesped    Huesped    `gorm:"foreignKey:HuespedID"`
}
