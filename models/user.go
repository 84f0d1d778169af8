package models

import "time"

// UserType discriminates patient and doctor accounts.
type UserType string

const (
	UserTypePatient UserType = "patient"
	UserTypeDoctor  UserType = "medecin"
)

// Valid reports whether t is a known account type.
func (t UserType) Valid() bool {
	return t == UserTypePatient || t == UserTypeDoctor
}

// User is an account holder. Role-specific fields are empty for the other role.
type User struct {
	ID           string      `bson:"id" json:"id"`
	Nom          string      `bson:"nom" json:"nom"`
	Telephone    string      `bson:"telephone" json:"telephone"`
	Type         UserType    `bson:"type" json:"type"`
	PasswordHash string      `bson:"password_hash,omitempty" json:"-"`
	TokenHash    string      `bson:"token_hash,omitempty" json:"-"`
	FCMToken     string      `bson:"fcm_token,omitempty" json:"-"`
	Platform     string      `bson:"platform,omitempty" json:"-"`
	CreationKey  string      `bson:"creation_key,omitempty" json:"-"`
	Age          int         `bson:"age,omitempty" json:"age,omitempty"`
	Ville        string      `bson:"ville,omitempty" json:"ville,omitempty"`
	Specialite   string      `bson:"specialite,omitempty" json:"specialite,omitempty"`
	Experience   string      `bson:"experience,omitempty" json:"experience,omitempty"`
	Tarif        int         `bson:"tarif,omitempty" json:"tarif,omitempty"`
	Diplomes     string      `bson:"diplomes,omitempty" json:"diplomes,omitempty"`
	Dependents   []Dependent `bson:"dependents,omitempty" json:"dependents,omitempty"`
	CreatedAt    time.Time   `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time   `bson:"updated_at" json:"updated_at"`
	LastLogin    *time.Time  `bson:"last_login,omitempty" json:"last_login,omitempty"`
}

// Dependent is a person the account holder books on behalf of.
type Dependent struct {
	ID        string `bson:"id" json:"id"`
	Nom       string `bson:"nom" json:"nom"`
	Age       int    `bson:"age" json:"age"`
	Lien      string `bson:"lien" json:"lien"`
	Telephone string `bson:"telephone,omitempty" json:"telephone,omitempty"`
}

// DependentCreate is the payload of POST /api/auth/dependents.
type DependentCreate struct {
	Nom       string `json:"nom" binding:"required"`
	Age       int    `json:"age" binding:"required,min=1,max=120"`
	Lien      string `json:"lien" binding:"required"`
	Telephone string `json:"telephone,omitempty"`
}

// UserCreate is the payload of POST /api/users: a bare patient record without credentials.
type UserCreate struct {
	Nom       string   `json:"nom" binding:"required"`
	Telephone string   `json:"telephone" binding:"required"`
	Type      UserType `json:"type"`
}

// RegisterRequest is the role-discriminated registration payload.
type RegisterRequest struct {
	Nom             string   `json:"nom"`
	Telephone       string   `json:"telephone"`
	MotDePasse      string   `json:"mot_de_passe"`
	TypeUtilisateur UserType `json:"type_utilisateur"`

	Age   int    `json:"age,omitempty"`
	Ville string `json:"ville,omitempty"`

	Specialite string `json:"specialite,omitempty"`
	Experience string `json:"experience,omitempty"`
	Tarif      int    `json:"tarif,omitempty"`
	Diplomes   string `json:"diplomes,omitempty"`
}

// LoginRequest is the payload of POST /api/auth/login.
type LoginRequest struct {
	Telephone  string `json:"telephone" binding:"required"`
	MotDePasse string `json:"mot_de_passe" binding:"required"`
}

// TokenResponse is returned by login and register.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	UserData    User   `json:"user_data"`
}

// ProfileUpdate is the partial payload of PUT /api/auth/profile.
type ProfileUpdate struct {
	Nom        *string `json:"nom,omitempty"`
	Age        *int    `json:"age,omitempty"`
	Ville      *string `json:"ville,omitempty"`
	Specialite *string `json:"specialite,omitempty"`
	Experience *string `json:"experience,omitempty"`
	Tarif      *int    `json:"tarif,omitempty"`
	Diplomes   *string `json:"diplomes,omitempty"`
}
