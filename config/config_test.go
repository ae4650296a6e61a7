package config

import (
	"os"
	"reflect"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo/options"
)

func TestMain(m *testing.M) {
	invalidYamlPath := "./invalid_config.yaml"
	invalidContent := []byte("invalid: [unclosed_list\nanother: value")

	// Create invalid YAML file
	if err := os.WriteFile(invalidYamlPath, invalidContent, 0600); err != nil {
		panic("failed to create invalid YAML file: " + err.Error())
	}

	// Run tests
	code := m.Run()

	// Clean up
	os.Remove(invalidYamlPath)

	os.Exit(code)
}

func TestReadLocalConfig(t *testing.T) {
	type args struct {
		configPath string
	}
	tests := []struct {
		name    string
		args    args
		want    *ServiceConfig
		wantErr bool
	}{
		{
			name: "successful",
			args: args{
				configPath: "../res/config.yaml",
			},
			want: &ServiceConfig{
				ServiceName: "recordmigrator",
				LogLevel:    "debug",
				LogFormat:   "console",
				Database: Database{
					Type: "sqlite",
					DSN:  "./res/migration.db",
					SQL: SQLConfig{
						Options: SQLServerOptions{
							MaxOpenConns:    10,
							MaxIdleConns:    5,
							ConnMaxLifetime: 30 * time.Second,
						},
					},
					MongoDB: MongoDBConfig{
						Timeout:          10 * time.Second,
						ValidCollections: []string{"usuarios", "produtos", "vendas"},
						ValidFields: []string{
							"email", "nome", "descricao", "preco", "id_usuario", "id_produto",
							"email_usuario", "produto", "quantidade", "valor", "data_venda",
						},
						Options: MongoServerOptions{
							APIVersion:           "1",
							SetStrict:            true,
							SetDeprecationErrors: true,
						},
					},
				},
				Source: Source{
					Directory: "./res/source",
					Encoding:  "ISO-8859-1",
					Extension: ".csv",
				},
				UsersConfig:    EntitySource{FileName: "usuarios", ColumnPattern: "email;nome"},
				ProductsConfig: EntitySource{FileName: "produtos", ColumnPattern: "nome;descricao;preco"},
				SalesConfig: EntitySource{
					FileName:      "vendas",
					ColumnPattern: "email_usuario;produto;quantidade;valor;data_venda",
				},
				Routines: RoutineConfig{
					MigrateUsers:    true,
					MigrateProducts: true,
					MigrateSales:    true,
				},
			},
			wantErr: false,
		},
		{
			name: "file does not exist",
			args: args{
				configPath: "",
			},
			want:    nil,
			wantErr: true,
		},
		{
			name: "invalid YAML file",
			args: args{
				configPath: "./invalid_config.yaml",
			},
			want:    nil,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(ENV_DATABASE_DSN, "")
			got, err := ReadLocalConfig(tt.args.configPath)
			if (err != nil) != tt.wantErr {
				t.Errorf("ReadLocalConfig() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ReadLocalConfig() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestReadLocalConfig_EnvOverride(t *testing.T) {
	t.Setenv(ENV_DATABASE_DSN, "postgres://migrator@localhost/migration?sslmode=disable")

	got, err := ReadLocalConfig("../res/config.yaml")
	if err != nil {
		t.Fatalf("ReadLocalConfig() error = %v", err)
	}
	if got.Database.DSN != "postgres://migrator@localhost/migration?sslmode=disable" {
		t.Errorf("Database.DSN = %q, want env override", got.Database.DSN)
	}
}

func TestRoutineConfig_EnableOnly(t *testing.T) {
	tests := []struct {
		name     string
		entities []string
		want     RoutineConfig
	}{
		{"sales only", []string{"sales"}, RoutineConfig{MigrateSales: true}},
		{"users and products", []string{"users", "products"}, RoutineConfig{MigrateUsers: true, MigrateProducts: true}},
		{"unknown ignored", []string{"orders"}, RoutineConfig{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := RoutineConfig{MigrateUsers: true, MigrateProducts: true, MigrateSales: true}
			r.EnableOnly(tt.entities)
			if r != tt.want {
				t.Errorf("EnableOnly() = %+v, want %+v", r, tt.want)
			}
		})
	}
}

func TestParseRoutineList(t *testing.T) {
	got := ParseRoutineList(" Users, ,sales,")
	want := []string{"users", "sales"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseRoutineList() = %v, want %v", got, want)
	}
	if got := ParseRoutineList(""); got != nil {
		t.Errorf("ParseRoutineList(\"\") = %v, want nil", got)
	}
}

func TestBuildServerAPIOptions(t *testing.T) {
	type args struct {
		cfg MongoServerOptions
	}
	tests := []struct {
		name string
		args args
		want *options.ServerAPIOptions
	}{
		{
			name: "default options",
			args: args{
				cfg: MongoServerOptions{
					APIVersion:           "1",
					SetStrict:            true,
					SetDeprecationErrors: true,
				},
			},
			want: options.ServerAPI(options.ServerAPIVersion("1")).
				SetStrict(true).
				SetDeprecationErrors(true),
		},
		{
			name: "empty options",
			args: args{
				cfg: MongoServerOptions{},
			},
			want: options.ServerAPI(options.ServerAPIVersion("")).
				SetStrict(false).
				SetDeprecationErrors(false),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildServerAPIOptions(tt.args.cfg); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("BuildServerAPIOptions() = %v, want %v", got, tt.want)
			}
		})
	}
}
