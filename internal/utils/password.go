package utils

import (
	"crypto/rand"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

// Alfabeto e tamanho das senhas temporárias emitidas no cadastro de barbeiro.
const (
	senhaTemporariaChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	senhaTemporariaLen   = 12
)

// HashSenha gera o hash bcrypt da senha.
func HashSenha(senha string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(senha), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerificarSenha compara a senha em texto puro com o hash armazenado.
func VerificarSenha(hash, senha string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(senha)) == nil
}

// GerarSenhaTemporaria emite a senha inicial de um barbeiro cadastrado sem
// senha; o primeiro login exige redefinição.
func GerarSenhaTemporaria() (string, error) {
	max := big.NewInt(int64(len(senhaTemporariaChars)))
	senha := make([]byte, senhaTemporariaLen)
	for i := range senha {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		senha[i] = senhaTemporariaChars[n.Int64()]
	}
	return string(senha), nil
}
