package response

// ErrCode is a typed error code enum for consistent API error identification.
// Codes double as message IDs in the i18n catalogs.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"
	ErrAdminAccessOnly    ErrCode = "ADMIN_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation         ErrCode = "VALIDATION_ERROR"
	ErrStudentInfoMissing ErrCode = "STUDENT_INFO_MISSING"
	ErrInvalidID          ErrCode = "INVALID_ID"
	ErrInvalidPayload     ErrCode = "INVALID_PAYLOAD"
	ErrInvalidCourse      ErrCode = "INVALID_COURSE"
	ErrPassingScore       ErrCode = "PASSING_SCORE_TOO_HIGH"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound           ErrCode = "NOT_FOUND"
	ErrExamNotFound       ErrCode = "EXAM_NOT_FOUND"
	ErrPublicExamNotFound ErrCode = "PUBLIC_EXAM_NOT_FOUND"
	ErrQuestionNotFound   ErrCode = "QUESTION_NOT_FOUND"
	ErrResultNotFound     ErrCode = "RESULT_NOT_FOUND"
	ErrDuplicateOrder     ErrCode = "DUPLICATE_ORDER"

	// ─── Eligibility ───────────────────────────────────────────────────
	ErrCandidateUnknown  ErrCode = "CANDIDATE_UNKNOWN"
	ErrNotRegistered     ErrCode = "NOT_REGISTERED"
	ErrPaymentIncomplete ErrCode = "PAYMENT_INCOMPLETE"
	ErrAlreadySubmitted  ErrCode = "ALREADY_SUBMITTED"
	ErrExamTimeExpired   ErrCode = "EXAM_TIME_EXPIRED"

	// ─── Authoring ─────────────────────────────────────────────────────
	ErrExamCodeExhausted ErrCode = "EXAM_CODE_EXHAUSTED"
	ErrImportValidation  ErrCode = "IMPORT_VALIDATION_FAILED"
	ErrFileRequired      ErrCode = "FILE_REQUIRED"
	ErrUnsupportedFile   ErrCode = "UNSUPPORTED_FILE_TYPE"
	ErrFileTooLarge      ErrCode = "FILE_TOO_LARGE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrSubmitFailed       ErrCode = "SUBMIT_FAILED"
	ErrSystemOwnerMissing ErrCode = "SYSTEM_OWNER_MISSING"
	ErrInternal           ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns the Turkish message for a code. It is used when no
// request localizer is available.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "E-posta veya şifre hatalı."
	case ErrTokenRequired:
		return "Kimlik doğrulama belirteci gereklidir."
	case ErrTokenInvalid:
		return "Kimlik doğrulama belirteci geçersiz."
	case ErrTokenExpired:
		return "Kimlik doğrulama belirtecinin süresi doldu."
	case ErrAdminAccessOnly:
		return "Bu kaynak yalnızca yöneticilere açıktır."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Eksik bilgiler"
	case ErrStudentInfoMissing:
		return "Öğrenci bilgileri eksik"
	case ErrInvalidID:
		return "Geçersiz kimlik biçimi."
	case ErrInvalidPayload:
		return "Geçersiz istek içeriği."
	case ErrInvalidCourse:
		return "Geçersiz eğitim seçimi"
	case ErrPassingScore:
		return "Geçme puanı toplam puandan büyük olamaz."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Kayıt bulunamadı."
	case ErrExamNotFound:
		return "Sınav bulunamadı"
	case ErrPublicExamNotFound:
		return "Sınav bulunamadı veya aktif değil"
	case ErrQuestionNotFound:
		return "Soru bulunamadı"
	case ErrResultNotFound:
		return "Sonuç bulunamadı"
	case ErrDuplicateOrder:
		return "Bu sıra numarası sınavda zaten kullanılıyor."

	// ─── Eligibility ───────────────────────────────────────────────────
	case ErrCandidateUnknown:
		return "Bu e-posta adresiyle kayıtlı bir öğrenci bulunamadı. Lütfen kurumla iletişime geçin."
	case ErrNotRegistered:
		return "Bu sınavın eğitimine kaydınız bulunmamaktadır."
	case ErrPaymentIncomplete:
		return "Sınava girebilmek için eğitim ödemenizi tamamlamanız gerekmektedir."
	case ErrAlreadySubmitted:
		return "Bu sınavı daha önce tamamladınız"
	case ErrExamTimeExpired:
		return "Sınav süresi dolduğu için cevaplarınız kabul edilemedi."

	// ─── Authoring ─────────────────────────────────────────────────────
	case ErrExamCodeExhausted:
		return "Benzersiz sınav kodu oluşturulamadı"
	case ErrImportValidation:
		return "Doğrulama hataları"
	case ErrFileRequired:
		return "Dosya yüklemesi gereklidir."
	case ErrUnsupportedFile:
		return "Desteklenmeyen dosya türü. CSV veya XLSX yükleyin."
	case ErrFileTooLarge:
		return "Dosya boyutu sınırı aşıyor."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Çok fazla istek. Lütfen daha sonra tekrar deneyin."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrSubmitFailed:
		return "Sınav gönderilirken hata oluştu"
	case ErrSystemOwnerMissing:
		return "Sistem hatası: Admin kullanıcı bulunamadı"
	case ErrInternal:
		return "Sunucu hatası oluştu."
	default:
		return "Beklenmeyen bir hata oluştu."
	}
}
