package recognition

import "strconv"

// UnknownToken stands in for class ids missing from the table.
const UnknownToken = "?"

const (
	firstDigitClass = 0
	lastDigitClass  = 9
)

// Class ids 10 and above are letters, syllables and district names as
// trained into the character recognizer.
var classTokens = map[int]string{
	10: "Metro", 11: "A", 12: "Bha", 13: "Cha", 14: "Chha", 15: "Da", 16: "DA", 17: "E",
	18: "Ga", 19: "Gha", 20: "Ha", 21: "Ja", 22: "Jha", 23: "Ka", 24: "Kha", 25: "La",
	26: "Ma", 27: "Na", 28: "Pa", 29: "Sa", 30: "Sha", 31: "Ta", 32: "THA", 33: "Tha",
	34: "U", 35: "Bagerhat", 36: "Bagura", 37: "Bandarban", 38: "Barguna", 39: "Barisal",
	40: "Bhola", 41: "Brahmanbaria", 42: "Chandpur", 43: "Chapainawabganj", 44: "Chatto",
	45: "Chattogram", 46: "Chuadanga", 47: "Coxs Bazar", 48: "Cumilla", 49: "Dhaka",
	50: "Dinajpur", 51: "Faridpur", 52: "Feni", 53: "Gaibandha", 54: "Gazipur",
	55: "Gopalganj", 56: "Habiganj", 57: "Jamalpur", 58: "Jessore", 59: "Jhalokati",
	60: "Jhenaidah", 61: "Joypurhat", 62: "Khagrachari", 63: "Khulna", 64: "Kishoreganj",
	65: "Kurigram", 66: "Kustia", 67: "Lakshmipur", 68: "Lalmonirhat", 69: "Madaripur",
	70: "Magura", 71: "Manikganj", 72: "Meherpur", 73: "Moulvibazar", 74: "Mymensingh",
	75: "Naogaon", 76: "Narail", 77: "Narayanganj", 78: "Narsingdi", 79: "Natore",
	80: "Netrokona", 81: "Nilphamari", 82: "Noakhali", 83: "Pabna", 84: "panchagarh",
	85: "Patuakhali", 86: "Pirojpur", 87: "Raj", 88: "Rajbari", 89: "Rajshahi",
	90: "Rangamati", 91: "Rangpur", 92: "Satkhira", 93: "Shariatpur", 94: "Sherpur",
	95: "Sirajganj", 96: "Sunamganj", 97: "Sylhet", 98: "Tangail", 99: "Thakurgaon",
	100: "Dha", 101: "Ba",
}

func IsDigitClass(classID int) bool {
	return classID >= firstDigitClass && classID <= lastDigitClass
}

// Token returns the display token for a class id.
func Token(classID int) string {
	if IsDigitClass(classID) {
		return strconv.Itoa(classID)
	}
	if tok, ok := classTokens[classID]; ok {
		return tok
	}
	return UnknownToken
}
