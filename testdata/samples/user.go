package usermodel

type UserData struct {
	User UserDataUser `json:"user"`
}

type UserDataUser struct {
	Active  bool                `json:"active"`
	Id      int64               `json:"id"`
	Name    string              `json:"name"`
	Profile UserDataUserProfile `json:"profile"`
	Roles   []string            `json:"roles"`
	Stats   UserDataUserStats   `json:"stats"`
}

type UserDataUserProfile struct {
	AvatarUrl string      `json:"avatar_url"`
	Bio       interface{} `json:"bio"`
}

type UserDataUserStats struct {
	Followers int64   `json:"followers"`
	Score     float64 `json:"score"`
}
