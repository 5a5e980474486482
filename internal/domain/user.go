package domain

// User is the slice of the identity service's user record this service reads.
type User struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	MobileNumber string `json:"mobileNumber"`
}

type UserContact struct {
	Email   string `json:"email"`
	PhoneNo string `json:"phoneNo"`
}
