package customers

// Customer is a client company as returned by /clientes/.
type Customer struct {
	ID            int64  `json:"id"`
	Nombre        string `json:"nombre"`
	Contacto      string `json:"contacto"`
	Email         string `json:"email"`
	Telefono      string `json:"telefono"`
	Direccion     string `json:"direccion"`
	NIFCIF        string `json:"nif_cif"`
	Activo        bool   `json:"activo"`
	FechaCreacion string `json:"fecha_creacion,omitempty"`
}
