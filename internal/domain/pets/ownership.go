package pets

import "context"

// IsOwner expone el chequeo de ownership sin exponer el Pet completo.
// Se usa desde otros módulos (grants, records) para evitar ciclos de imports.
func (s *Service) IsOwner(ctx context.Context, petID, userID string) (bool, error) {
	p, err := s.GetByID(ctx, petID)
	if err != nil {
		return false, err
	}
	return p.HasOwner(userID), nil
}

// PetName devuelve solo el nombre, para armar notificaciones.
func (s *Service) PetName(ctx context.Context, petID string) (string, error) {
	p, err := s.GetByID(ctx, petID)
	if err != nil {
		return "", err
	}
	return p.Name, nil
}

// OwnersOf devuelve los IDs de los dueños actuales de la mascota.
// El scanner lo usa para resolver destinatarios de notificaciones.
func (s *Service) OwnersOf(ctx context.Context, petID string) ([]string, error) {
	p, err := s.GetByID(ctx, petID)
	if err != nil {
		return nil, err
	}
	return p.Owners, nil
}
