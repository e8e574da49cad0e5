package validation

import "testing"

func TestValidateEmail(t *testing.T) {
	valid := []string{
		"ivan@example.com",
		"ivan.petrov+tag@mail.example.org",
		"a@b.co",
	}
	for _, email := range valid {
		if err := ValidateEmail(email); err != nil {
			t.Fatalf("email %q должен проходить, получили %v", email, err)
		}
	}

	invalid := []string{
		"",
		"not-an-email",
		"two@@example.com",
		"@example.com",
		"ivan@",
		"ivan@localhost",
		"иван@example.com",
	}
	for _, email := range invalid {
		if err := ValidateEmail(email); err == nil {
			t.Fatalf("email %q не должен проходить", email)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("Password123"); err != nil {
		t.Fatalf("пароль должен проходить: %v", err)
	}

	invalid := []string{
		"Pa1",         // короткий
		"password123", // без заглавных
		"PASSWORD123", // без строчных
		"Passwordabc", // без цифр
	}
	for _, password := range invalid {
		if err := ValidatePassword(password); err == nil {
			t.Fatalf("пароль %q не должен проходить", password)
		}
	}
}

func TestValidatePhone(t *testing.T) {
	if err := ValidatePhone(""); err != nil {
		t.Fatalf("пустой телефон допустим: %v", err)
	}
	if err := ValidatePhone("+7 900 123-45-67"); err != nil {
		t.Fatalf("телефон должен проходить: %v", err)
	}
	if err := ValidatePhone("abc"); err == nil {
		t.Fatalf("телефон из букв не должен проходить")
	}
}

func TestValidateName(t *testing.T) {
	if err := ValidateName("Иван"); err != nil {
		t.Fatalf("имя должно проходить: %v", err)
	}
	if err := ValidateName("  "); err == nil {
		t.Fatalf("пустое имя не должно проходить")
	}
	if err := ValidateName("И"); err == nil {
		t.Fatalf("имя из одного символа не должно проходить")
	}
}
