package respond

type RegisterRespond struct {
	User    UserRespond `json:"user"`
	Message string      `json:"message"`
}

type LoginRespond struct {
	Token     string      `json:"token"`
	User      UserRespond `json:"user"`
	ExpiresIn string      `json:"expiresIn"`
}

type TokenRespond struct {
	Token     string `json:"token"`
	ExpiresIn string `json:"expiresIn"`
}
