package store

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/solidario/estoque/auth"
)

// Seed provisions the default accounts and categorias on an empty
// database. Existing records are left untouched.
func Seed(ctx context.Context, db *bun.DB, logger auth.Logger) error {
	if logger == nil {
		logger = auth.DefaultLogger()
	}

	usuarios := auth.NewUsuariosRepository(db)
	count, err := usuarios.Count(ctx)
	if err != nil {
		return err
	}
	if count == 0 {
		defaults := []struct {
			nome, email, senha string
			perfil             auth.Perfil
		}{
			{"Administrador", "admin@ong.com", "admin123", auth.PerfilAdmin},
			{"Voluntário", "voluntario@ong.com", "voluntario123", auth.PerfilVoluntario},
		}
		for _, u := range defaults {
			hash, err := auth.HashPassword(u.senha)
			if err != nil {
				return err
			}
			if _, err := usuarios.Create(ctx, &auth.Usuario{
				Nome:      u.nome,
				Email:     u.email,
				SenhaHash: hash,
				Perfil:    u.perfil,
			}); err != nil {
				return err
			}
			logger.Info("seeded usuario %s (%s)", u.email, u.perfil)
		}
	}

	categorias := NewCategoriasRepository(db)
	defaults := []Categoria{
		{Nome: "Alimentos", Descricao: "Alimentos não perecíveis e perecíveis", Icone: "utensils"},
		{Nome: "Higiene", Descricao: "Produtos de higiene pessoal", Icone: "droplet"},
		{Nome: "Limpeza", Descricao: "Produtos de limpeza", Icone: "spray-can"},
		{Nome: "Vestuário", Descricao: "Roupas e calçados", Icone: "shirt"},
		{Nome: "Eletrodomésticos", Descricao: "Eletrodomésticos e eletrônicos", Icone: "plug"},
	}
	for i := range defaults {
		exists, err := categorias.ExistsByNome(ctx, defaults[i].Nome)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		if _, err := categorias.Create(ctx, &defaults[i]); err != nil {
			return err
		}
		logger.Info("seeded categoria %s", defaults[i].Nome)
	}
	return nil
}
