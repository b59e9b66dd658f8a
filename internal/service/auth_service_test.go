package service

import (
	"testing"
)

func TestRegister(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	tests := []struct {
		name      string
		input     RegisterInput
		shouldErr bool
	}{
		{
			name: "Valid registration",
			input: RegisterInput{
				Username:  "alice",
				Email:     "alice@example.com",
				Password:  "longenoughpassword",
				FirstName: "Alice",
				LastName:  "Durand",
			},
			shouldErr: false,
		},
		{
			name: "Invalid username",
			input: RegisterInput{
				Username: "a!",
				Email:    "a@example.com",
				Password: "longenoughpassword",
			},
			shouldErr: true,
		},
		{
			name: "Invalid email",
			input: RegisterInput{
				Username: "bob",
				Email:    "not-an-email",
				Password: "longenoughpassword",
			},
			shouldErr: true,
		},
		{
			name: "Short password",
			input: RegisterInput{
				Username: "bob",
				Email:    "bob@example.com",
				Password: "short",
			},
			shouldErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewAuthService(NewMockUserRepository())
			resp, err := svc.Register(tt.input)
			if (err != nil) != tt.shouldErr {
				t.Errorf("Register error = %v, wantErr %v", err, tt.shouldErr)
			}
			if !tt.shouldErr {
				if resp.Token == "" {
					t.Errorf("Register returned no token")
				}
				if resp.User.Username != tt.input.Username {
					t.Errorf("user = %q, want %q", resp.User.Username, tt.input.Username)
				}
			}
		})
	}
}

func TestRegisterDuplicate(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	svc := NewAuthService(NewMockUserRepository())

	input := RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "longenoughpassword",
	}
	if _, err := svc.Register(input); err != nil {
		t.Fatalf("first Register error = %v", err)
	}
	if _, err := svc.Register(input); err == nil {
		t.Errorf("duplicate email accepted")
	}

	input.Email = "alice2@example.com"
	if _, err := svc.Register(input); err == nil {
		t.Errorf("duplicate username accepted")
	}
}

func TestLogin(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	svc := NewAuthService(NewMockUserRepository())

	if _, err := svc.Register(RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "longenoughpassword",
	}); err != nil {
		t.Fatalf("Register error = %v", err)
	}

	tests := []struct {
		name      string
		input     LoginInput
		shouldErr bool
	}{
		{"Valid login", LoginInput{Email: "alice@example.com", Password: "longenoughpassword"}, false},
		{"Email case-insensitive", LoginInput{Email: "Alice@Example.COM", Password: "longenoughpassword"}, false},
		{"Wrong password", LoginInput{Email: "alice@example.com", Password: "wrongpassword"}, true},
		{"Unknown email", LoginInput{Email: "nobody@example.com", Password: "longenoughpassword"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.Login(tt.input)
			if (err != nil) != tt.shouldErr {
				t.Errorf("Login error = %v, wantErr %v", err, tt.shouldErr)
			}
			if !tt.shouldErr && resp.Token == "" {
				t.Errorf("Login returned no token")
			}
		})
	}
}
