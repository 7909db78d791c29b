package db

import (
	"fmt"

	"github.com/challengelist/listd/internal/models"
	"github.com/challengelist/listd/internal/permissions"
	"gorm.io/gorm"
)

// Migrate applies the schema and seeds the built-in groups.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}
	if errAutoMigrate := conn.AutoMigrate(
		&models.Group{},
		&models.Badge{},
		&models.Player{},
		&models.Account{},
		&models.Challenge{},
		&models.Record{},
		&models.Session{},
	); errAutoMigrate != nil {
		return fmt.Errorf("db: migrate: %w", errAutoMigrate)
	}
	return ensureBuiltinGroups(conn)
}

// ensureBuiltinGroups seeds the owner and member groups when absent.
func ensureBuiltinGroups(conn *gorm.DB) error {
	builtin := []models.Group{
		{
			Name:             "Site Owner",
			Priority:         1000,
			PermissionsGrant: uint64(permissions.Administrator),
		},
		{
			Name:     "Member",
			Priority: 0,
		},
	}
	for _, group := range builtin {
		var count int64
		if errCount := conn.Model(&models.Group{}).Where("name = ?", group.Name).Count(&count).Error; errCount != nil {
			return fmt.Errorf("db: count group %s: %w", group.Name, errCount)
		}
		if count > 0 {
			continue
		}
		if errCreate := conn.Create(&group).Error; errCreate != nil {
			return fmt.Errorf("db: seed group %s: %w", group.Name, errCreate)
		}
	}
	return nil
}
