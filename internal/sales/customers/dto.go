package customers

import "github.com/fabrica-erp/panel/internal/forms"

// Payload is the body of create and update requests.
type Payload struct {
	Nombre    string `json:"nombre"`
	Contacto  string `json:"contacto"`
	Email     string `json:"email"`
	Telefono  string `json:"telefono"`
	Direccion string `json:"direccion"`
	NIFCIF    string `json:"nif_cif"`
	Activo    bool   `json:"activo"`
}

// PayloadFromForm maps a validated form to a request body.
func PayloadFromForm(v forms.Values) (any, error) {
	return Payload{
		Nombre:    v.Trimmed("nombre"),
		Contacto:  v.Trimmed("contacto"),
		Email:     v.Trimmed("email"),
		Telefono:  v.Trimmed("telefono"),
		Direccion: v.Trimmed("direccion"),
		NIFCIF:    v.Trimmed("nif_cif"),
		Activo:    v.Bool("activo"),
	}, nil
}

// ToForm fills the edit form from c.
func ToForm(c Customer) forms.Values {
	v := forms.Values{}
	v.Set("nombre", c.Nombre)
	v.Set("contacto", c.Contacto)
	v.Set("email", c.Email)
	v.Set("telefono", c.Telefono)
	v.Set("direccion", c.Direccion)
	v.Set("nif_cif", c.NIFCIF)
	if c.Activo {
		v.Set("activo", "true")
	}
	return v
}

// Defaults is the empty create form. New customers start active.
func Defaults() forms.Values {
	v := forms.Values{}
	v.Set("activo", "true")
	return v
}
