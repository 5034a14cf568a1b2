package create_booking

import "time"

// Request модель запроса на создание бронирования
type Request struct {
	UserID        int64     `validate:"gt=0"`                       // ID пользователя
	VendorID      int64     `validate:"gt=0"`                       // ID вендора
	ServiceID     *int64    `validate:"omitempty,gt=0"`             // ID услуги (nil - бронь всего дня вендора)
	EventDate     time.Time `validate:"required"`                   // Дата мероприятия (время игнорируется)
	CustomerName  string    `validate:"required,not_blank,max=200"` // Имя заказчика
	CustomerEmail string    `validate:"required,email,max=254"`     // Email заказчика
	GuestCount    int       `validate:"gt=0,max=100000"`            // Количество гостей
	Notes         *string   `validate:"omitempty,max=500"`          // Дополнительные заметки (опционально)
}

// Response модель ответа с созданным бронированием
type Response struct {
	ID            int64     // ID созданного бронирования
	UserID        int64     // ID пользователя
	VendorID      int64     // ID вендора
	ServiceID     *int64    // ID услуги
	EventDate     time.Time // Дата мероприятия
	CustomerName  string    // Имя заказчика
	CustomerEmail string    // Email заказчика
	GuestCount    int       // Количество гостей
	Notes         *string   // Заметки
	Status        string    // Статус бронирования

	CreatedAt time.Time // Время создания
	UpdatedAt time.Time // Время обновления
}
