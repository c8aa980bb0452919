package handler

type registerRequest struct {
	Email        string `json:"email"`
	MobileNumber string `json:"mobile_number"`
	Phone        string `json:"phone"`
	Password     string `json:"password"`
	Password2    string `json:"password2"`
	Role         string `json:"role"`
}

type loginRequest struct {
	Email        string `json:"email"`
	MobileNumber string `json:"mobile_number"`
	Password     string `json:"password"`
}

type refreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}
