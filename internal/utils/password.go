package utils

// Les mots de passe staff utilisent le même encodage Argon2id que les codes VIP

func HashPassword(password string) (string, error) {
	return HashVIPCode(password)
}

func VerifyPassword(password, encodedHash string) (bool, error) {
	return VerifyVIPCode(password, encodedHash)
}
