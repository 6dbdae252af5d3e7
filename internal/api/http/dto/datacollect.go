package dto

type SetRequest struct {
	Agreed *bool `json:"agreed" binding:"required"`
}

type SetHoneypotsRequest struct {
	Minipots       map[string]bool `json:"minipots" binding:"required,dive,keys,oneof=23tcp 2323tcp 8123tcp 8080tcp 80tcp 3128tcp,endkeys"`
	LogCredentials *bool           `json:"log_credentials" binding:"required"`
}

type GetRegisteredRequest struct {
	Email    string `json:"email" binding:"required"`
	Language string `json:"language" binding:"required"`
}

type ResultResponse struct {
	Result bool `json:"result"`
}
