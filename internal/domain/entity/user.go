package entity

// User is the sole aggregate of the service. Password always holds the bcrypt
// digest once the record has been persisted; CPF is stored digits-only,
// normalized at write time.
//
// The password field is serialized on purpose: authenticate, list and getOne
// return the full stored row, hash included.
type User struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	CPF          string `json:"cpf"`
	State        string `json:"state"`
	City         string `json:"city"`
	Neighborhood string `json:"neighborhood"`
	Street       string `json:"street"`
	Number       string `json:"number"`
	Phone        string `json:"phone"`
	Birthdate    string `json:"birthdate"`
}
